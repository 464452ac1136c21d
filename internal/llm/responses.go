package llm

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

const (
	responseTextDelta    = "response.output_text.delta"
	responseItemDone     = "response.output_item.done"
	responseFunctionCall = "function_call"
	responseError        = "error"
	responseFailed       = "response.failed"
	responseIncomplete   = "response.incomplete"
)

// responsesStream adapts a Responses API event stream. Function calls arrive
// complete in output_item.done events, so no accumulation is needed.
type responsesStream struct {
	upstream source[responses.ResponseStreamEventUnion]
	current  Event
	err      error
}

func newResponsesStream(upstream source[responses.ResponseStreamEventUnion]) *responsesStream {
	return &responsesStream{upstream: upstream}
}

func (s *responsesStream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.upstream.Next() {
		raw := s.upstream.Current()
		s.err = responseFailure(raw)
		if s.err != nil {
			return false
		}
		event, ok := translateResponseEvent(raw)
		if ok {
			s.current = event
			return true
		}
	}
	return false
}

func (s *responsesStream) Current() Event {
	return s.current
}

func (s *responsesStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.upstream.Err()
}

func (s *responsesStream) Close() error {
	return s.upstream.Close()
}

func translateResponseEvent(event responses.ResponseStreamEventUnion) (Event, bool) {
	switch event.Type {
	case responseTextDelta:
		delta := event.AsResponseOutputTextDelta()
		if delta.Delta == "" {
			return Event{}, false
		}
		return TextDelta(delta.Delta), true
	case responseItemDone:
		done := event.AsResponseOutputItemDone()
		if done.Item.Type != responseFunctionCall {
			return Event{}, false
		}
		call := done.Item.AsFunctionCall()
		return ToolCallComplete(ToolCall{
			ID:        call.CallID,
			Name:      call.Name,
			Arguments: call.Arguments,
		}), true
	}
	return Event{}, false
}

// responseFailure reports terminal events that end the stream without a
// complete response. They arrive as ordinary events, so the SSE decoder never
// surfaces them through Err.
func responseFailure(event responses.ResponseStreamEventUnion) error {
	switch event.Type {
	case responseError:
		e := event.AsError()
		return fmt.Errorf("response stream error %s: %s", e.Code, e.Message)
	case responseFailed:
		e := event.AsResponseFailed().Response.Error
		return fmt.Errorf("response failed %s: %s", e.Code, e.Message)
	case responseIncomplete:
		reason := event.AsResponseIncomplete().Response.IncompleteDetails.Reason
		if reason == "" {
			return errors.New("response incomplete")
		}
		return fmt.Errorf("response incomplete: %s", reason)
	}
	return nil
}

func responseInput(req Request) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := responses.EasyInputMessageRoleUser
		if m.Role == RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, role))
	}
	return items
}

func responseTools(tools []Tool) []responses.ToolUnionParam {
	params := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
				Strict:      openai.Bool(true),
			},
		})
	}
	return params
}
