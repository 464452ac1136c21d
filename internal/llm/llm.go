// Package llm is the boundary to the language model. Provider streams are
// translated into a small set of internal events so the rest of the app never
// sees which upstream API produced them.
package llm

import (
	"context"
	"errors"
)

var ErrUpstream = errors.New("model provider failed")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type EventKind int

const (
	EventTextDelta EventKind = iota + 1
	EventToolCall
)

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type Event struct {
	Kind     EventKind
	Text     string
	ToolCall ToolCall
}

func TextDelta(text string) Event {
	return Event{Kind: EventTextDelta, Text: text}
}

func ToolCallComplete(call ToolCall) Event {
	return Event{Kind: EventToolCall, ToolCall: call}
}

// Stream is consumed like the SDK streams it wraps: call Next until it
// returns false, then check Err.
type Stream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

type Message struct {
	Role    string
	Content string
}

// Tool is a function the model may call. Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Request struct {
	System   string
	Messages []Message
	Tools    []Tool
}

type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Complete(ctx context.Context, system, prompt string) (string, error)
}
