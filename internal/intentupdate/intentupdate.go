// Package intentupdate embeds proposed day updates inside assistant message
// text. The payload lives between <INTENT_UPDATE> tags at the end of the
// message so the same string is both the stored content and what the client
// renders.
package intentupdate

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	Tag         = "INTENT_UPDATE"
	PayloadType = "intent_update"

	StatusPending   = "pending"
	StatusConfirmed = "confirmed"

	FieldIntent = "intent"
	FieldAction = "action"

	separator = "\n\n"
)

var spanPattern = regexp.MustCompile(`<` + Tag + `>([\s\S]*?)</` + Tag + `>`)

type Item struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Label  string `json:"label"`
	Intent string `json:"intent"`
	Status string `json:"status"`
	// Field is empty for intent proposals, which keeps the wire format
	// identical to the single-field form.
	Field string `json:"field,omitempty"`
}

// TargetField returns the goal day column this item writes.
func (i Item) TargetField() string {
	if i.Field == "" {
		return FieldIntent
	}
	return i.Field
}

type Payload struct {
	Type  string `json:"type"`
	Items []Item `json:"items"`
}

// Decode splits content into display text and the embedded payload.
// Content without a span is returned as is with a nil payload. A span whose
// body is not valid JSON is stripped and the payload is nil. The payload is
// always appended last, so when several spans are present the last one wins.
func Decode(content string) (string, *Payload) {
	all := spanPattern.FindAllStringSubmatchIndex(content, -1)
	if all == nil {
		return content, nil
	}
	loc := all[len(all)-1]

	text := strings.TrimSuffix(content[:loc[0]], separator) + content[loc[1]:]

	body := strings.TrimSpace(content[loc[2]:loc[3]])
	var payload Payload
	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		return text, nil
	}

	return text, &payload
}

// Encode appends the payload span to text, separated by a blank line when
// text is non-empty.
func Encode(text string, payload Payload) string {
	// Marshal escapes <, > and & so the closing tag can never appear inside
	// the span.
	serialized, err := json.Marshal(payload)
	if err != nil {
		return text
	}

	span := "<" + Tag + ">" + string(serialized) + "</" + Tag + ">"
	if text == "" {
		return span
	}
	return text + separator + span
}

// SetItemStatus moves the item with itemID to status and re-encodes the
// content. It returns the original content and a nil item when there is no
// payload, no such item, or the item cannot move to status.
func SetItemStatus(content, itemID, status string) (string, *Item) {
	text, payload := Decode(content)
	if payload == nil || payload.Type != PayloadType {
		return content, nil
	}

	var updated *Item
	items := make([]Item, len(payload.Items))
	for i, item := range payload.Items {
		if updated == nil && item.ID == itemID && canTransition(item.Status, status) {
			item.Status = status
			updated = &item
		}
		items[i] = item
	}

	if updated == nil {
		return content, nil
	}

	result := *updated
	return Encode(text, Payload{Type: payload.Type, Items: items}), &result
}

// FindItem returns a copy of the item with itemID, or nil.
func FindItem(content, itemID string) *Item {
	_, payload := Decode(content)
	if payload == nil || payload.Type != PayloadType {
		return nil
	}
	for _, item := range payload.Items {
		if item.ID == itemID {
			found := item
			return &found
		}
	}
	return nil
}

var tagPattern = regexp.MustCompile(`</?` + Tag + `>`)

// StripTags removes literal span tags from free text.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// StripPayload returns only the display text of content.
func StripPayload(content string) string {
	text, _ := Decode(content)
	return text
}

func canTransition(from, to string) bool {
	return from == StatusPending && to == StatusConfirmed
}
