package llm

import (
	"github.com/openai/openai-go"
)

// source is the subset of ssestream.Stream the adapters read from.
type source[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// chatStream adapts a chat-completions chunk stream. Text deltas are emitted
// as they arrive; tool call fragments are merged per slot and emitted once
// the upstream stream ends cleanly.
type chatStream struct {
	upstream source[openai.ChatCompletionChunk]
	calls    *ToolCallAccumulator
	pending  []Event
	current  Event
	drained  bool
}

func newChatStream(upstream source[openai.ChatCompletionChunk]) *chatStream {
	return &chatStream{
		upstream: upstream,
		calls:    NewToolCallAccumulator(),
	}
}

func (s *chatStream) Next() bool {
	for {
		if len(s.pending) > 0 {
			s.current = s.pending[0]
			s.pending = s.pending[1:]
			return true
		}
		if s.drained {
			return false
		}
		if !s.upstream.Next() {
			s.drained = true
			if s.upstream.Err() != nil {
				return false
			}
			for _, call := range s.calls.Calls() {
				s.pending = append(s.pending, ToolCallComplete(call))
			}
			continue
		}
		s.pending = append(s.pending, translateChatChunk(s.upstream.Current(), s.calls)...)
	}
}

func (s *chatStream) Current() Event {
	return s.current
}

func (s *chatStream) Err() error {
	return s.upstream.Err()
}

func (s *chatStream) Close() error {
	return s.upstream.Close()
}

func translateChatChunk(chunk openai.ChatCompletionChunk, calls *ToolCallAccumulator) []Event {
	var events []Event
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			events = append(events, TextDelta(choice.Delta.Content))
		}
		for _, fragment := range choice.Delta.ToolCalls {
			calls.Add(fragment.Index, fragment.ID, fragment.Function.Name, fragment.Function.Arguments)
		}
	}
	return events
}

func chatMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}

func chatTools(tools []Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
				Strict:      openai.Bool(true),
			},
		})
	}
	return params
}
