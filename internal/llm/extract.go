package llm

import (
	"fmt"
	"strings"
)

type ExtractResult struct {
	Text      string
	ToolCalls []ToolCall
}

// Extract drains stream in one pass. Text deltas are handed to onText in the
// order received and also collected into Result.Text; completed tool calls
// are collected without validating their arguments.
//
// When onText fails, extraction stops and the partial result is returned with
// that error. Upstream failures are wrapped with ErrUpstream.
func Extract(stream Stream, onText func(string) error) (ExtractResult, error) {
	var text strings.Builder
	var calls []ToolCall

	for stream.Next() {
		event := stream.Current()
		switch event.Kind {
		case EventTextDelta:
			if event.Text == "" {
				continue
			}
			text.WriteString(event.Text)
			if onText != nil {
				err := onText(event.Text)
				if err != nil {
					return ExtractResult{Text: text.String(), ToolCalls: calls}, err
				}
			}
		case EventToolCall:
			calls = append(calls, event.ToolCall)
		}
	}

	result := ExtractResult{Text: text.String(), ToolCalls: calls}
	err := stream.Err()
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return result, nil
}
