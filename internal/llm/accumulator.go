package llm

import "sort"

// ToolCallAccumulator merges incremental tool call fragments addressed by
// slot index. One accumulator belongs to one stream.
type ToolCallAccumulator struct {
	slots map[int64]*ToolCall
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{slots: make(map[int64]*ToolCall)}
}

// Add appends a fragment to the call in slot index. The id replaces any
// previous id when non-empty; name and argument fragments are concatenated.
func (a *ToolCallAccumulator) Add(index int64, id, name, arguments string) {
	call, ok := a.slots[index]
	if !ok {
		call = &ToolCall{}
		a.slots[index] = call
	}
	if id != "" {
		call.ID = id
	}
	call.Name += name
	call.Arguments += arguments
}

// Calls returns the accumulated calls ordered by slot index.
func (a *ToolCallAccumulator) Calls() []ToolCall {
	indexes := make([]int64, 0, len(a.slots))
	for index := range a.slots {
		indexes = append(indexes, index)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	calls := make([]ToolCall, 0, len(indexes))
	for _, index := range indexes {
		calls = append(calls, *a.slots[index])
	}
	return calls
}

func (a *ToolCallAccumulator) Len() int {
	return len(a.slots)
}
