package intentupdate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		Type: PayloadType,
		Items: []Item{
			{ID: "a1", Date: "2025-01-02", Label: "Today", Intent: "Run 5k", Status: StatusPending},
			{ID: "b2", Date: "2025-01-03", Label: "Tomorrow", Intent: "Stretch", Status: StatusPending},
		},
	}
}

func TestEncodeWireFormat(t *testing.T) {
	payload := Payload{
		Type:  PayloadType,
		Items: []Item{{ID: "x", Date: "2025-01-02", Label: "Today", Intent: "Run", Status: StatusPending}},
	}

	got := Encode("Sounds good!", payload)

	want := "Sounds good!\n\n<INTENT_UPDATE>" +
		`{"type":"intent_update","items":[{"id":"x","date":"2025-01-02","label":"Today","intent":"Run","status":"pending"}]}` +
		"</INTENT_UPDATE>"
	assert.Equal(t, want, got)
}

func TestEncodeEmptyTextHasNoSeparator(t *testing.T) {
	got := Encode("", samplePayload())
	assert.True(t, strings.HasPrefix(got, "<INTENT_UPDATE>"))
	assert.True(t, strings.HasSuffix(got, "</INTENT_UPDATE>"))
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"Plain reply.",
		"Trailing space ",
		"Two paragraphs.\n\nSecond one.",
		"Ends with blank line\n\n",
		"Unicode: café ✓",
	}

	for _, text := range texts {
		payload := samplePayload()
		gotText, gotPayload := Decode(Encode(text, payload))
		assert.Equal(t, text, gotText)
		require.NotNil(t, gotPayload)
		assert.Equal(t, payload, *gotPayload)
	}
}

func TestRoundTripEscapesClosingTagInIntent(t *testing.T) {
	payload := Payload{
		Type:  PayloadType,
		Items: []Item{{ID: "x", Date: "2025-01-02", Label: "Today", Intent: "write </INTENT_UPDATE> & <b>", Status: StatusPending}},
	}

	text, got := Decode(Encode("hi", payload))
	assert.Equal(t, "hi", text)
	require.NotNil(t, got)
	assert.Equal(t, payload.Items[0].Intent, got.Items[0].Intent)
}

func TestActionFieldRoundTrip(t *testing.T) {
	payload := Payload{
		Type:  PayloadType,
		Items: []Item{{ID: "x", Date: "2025-01-02", Label: "Today", Intent: "Ran 3k", Status: StatusPending, Field: FieldAction}},
	}

	content := Encode("ok", payload)
	assert.Contains(t, content, `"field":"action"`)

	_, got := Decode(content)
	require.NotNil(t, got)
	assert.Equal(t, FieldAction, got.Items[0].TargetField())
	assert.Equal(t, FieldIntent, Item{}.TargetField())
}

func TestDecodeWithoutTag(t *testing.T) {
	text, payload := Decode("Just talking.")
	assert.Equal(t, "Just talking.", text)
	assert.Nil(t, payload)
}

func TestDecodeMalformedPayload(t *testing.T) {
	content := "Hello\n\n<INTENT_UPDATE>{not json</INTENT_UPDATE>"

	text, payload := Decode(content)
	assert.Equal(t, "Hello", text)
	assert.Nil(t, payload)
}

func TestDecodeUnclosedTagIsNotAMatch(t *testing.T) {
	content := "Hello <INTENT_UPDATE>{\"type\":\"intent_update\"}"

	text, payload := Decode(content)
	assert.Equal(t, content, text)
	assert.Nil(t, payload)
}

func TestDecodeUsesLastSpan(t *testing.T) {
	quoted := "See <INTENT_UPDATE>{\"type\":\"intent_update\",\"items\":[{\"id\":\"quoted\"}]}</INTENT_UPDATE> above."
	content := Encode(quoted, samplePayload())

	text, payload := Decode(content)
	require.NotNil(t, payload)
	assert.Equal(t, samplePayload().Items, payload.Items)
	assert.Equal(t, quoted, text)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "a {x} b", StripTags("a <INTENT_UPDATE>{x}</INTENT_UPDATE> b"))
	assert.Equal(t, "plain <b>text</b>", StripTags("plain <b>text</b>"))
}

func TestSetItemStatus(t *testing.T) {
	content := Encode("Confirm?", samplePayload())

	updated, item := SetItemStatus(content, "b2", StatusConfirmed)
	require.NotNil(t, item)
	assert.Equal(t, "b2", item.ID)
	assert.Equal(t, StatusConfirmed, item.Status)

	text, payload := Decode(updated)
	assert.Equal(t, "Confirm?", text)
	require.NotNil(t, payload)
	assert.Equal(t, StatusPending, payload.Items[0].Status)
	assert.Equal(t, StatusConfirmed, payload.Items[1].Status)
}

func TestSetItemStatusUnknownID(t *testing.T) {
	content := Encode("Confirm?", samplePayload())

	updated, item := SetItemStatus(content, "missing", StatusConfirmed)
	assert.Nil(t, item)
	assert.Equal(t, content, updated)
}

func TestSetItemStatusWithoutPayload(t *testing.T) {
	updated, item := SetItemStatus("no payload here", "a1", StatusConfirmed)
	assert.Nil(t, item)
	assert.Equal(t, "no payload here", updated)
}

func TestSetItemStatusWrongPayloadType(t *testing.T) {
	payload := samplePayload()
	payload.Type = "something_else"
	content := Encode("x", payload)

	updated, item := SetItemStatus(content, "a1", StatusConfirmed)
	assert.Nil(t, item)
	assert.Equal(t, content, updated)
}

func TestSetItemStatusTwice(t *testing.T) {
	content := Encode("Confirm?", samplePayload())

	once, item := SetItemStatus(content, "a1", StatusConfirmed)
	require.NotNil(t, item)

	twice, again := SetItemStatus(once, "a1", StatusConfirmed)
	assert.Nil(t, again)
	assert.Equal(t, once, twice)
}

func TestFindItem(t *testing.T) {
	content := Encode("Confirm?", samplePayload())

	item := FindItem(content, "a1")
	require.NotNil(t, item)
	assert.Equal(t, "Run 5k", item.Intent)

	assert.Nil(t, FindItem(content, "zz"))
	assert.Nil(t, FindItem("plain", "a1"))
}

func TestStripPayload(t *testing.T) {
	assert.Equal(t, "Confirm?", StripPayload(Encode("Confirm?", samplePayload())))
	assert.Equal(t, "plain", StripPayload("plain"))
}
