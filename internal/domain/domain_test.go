package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestJSONFieldNames(t *testing.T) {
	path := "/tmp/main.go"
	sel := "fmt.Println"
	req := NewRequest(&path, "package main\n", 3, 7)
	req.Selection = &sel

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "/tmp/main.go", raw["file_path"])
	assert.Equal(t, float64(3), raw["cursor_line"])
	assert.Equal(t, float64(7), raw["cursor_col"])
	assert.Equal(t, "fmt.Println", raw["selection"])
	assert.NotContains(t, raw, "language")
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"title":"a","detail":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Title)
	assert.Equal(t, "b", resp.Detail)
}

func TestDecodeResponseOptionalFields(t *testing.T) {
	raw := `{"title":"fix","detail":"use :=","file":"x.go","line":12,"patch":"- a\n+ b"}`
	resp, err := DecodeResponse([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, resp.File)
	assert.Equal(t, "x.go", *resp.File)
	require.NotNil(t, resp.Line)
	assert.Equal(t, 12, *resp.Line)
	require.NotNil(t, resp.Patch)
}

func TestDecodeResponseRejectsNonJSON(t *testing.T) {
	_, err := DecodeResponse([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeResponseRejectsMissingTitle(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"detail":"no title here"}`))
	assert.Error(t, err)

	_, err = DecodeResponse([]byte(`{"title":42,"detail":"wrong type"}`))
	assert.Error(t, err)
}

func TestDecodeResponseRejectsMissingDetail(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"title":"a"}`))
	assert.Error(t, err)

	_, err = DecodeResponse([]byte(`{"title":"a","detail":7}`))
	assert.Error(t, err)
}

func TestDecodeResponseRejectsArray(t *testing.T) {
	_, err := DecodeResponse([]byte(`[{"title":"a"}]`))
	assert.Error(t, err)
}

func TestEventConstructors(t *testing.T) {
	assert.Equal(t, EventConnected, ConnectedEvent("ollama").Kind)
	assert.Equal(t, "ollama", ConnectedEvent("ollama").Name)

	ev := ToolOutputEvent("grep", "3 matches")
	assert.Equal(t, EventToolOutput, ev.Kind)
	assert.Equal(t, "grep", ev.Tool)
	assert.Equal(t, "3 matches", ev.Detail)

	assert.Equal(t, "boom", ErrorEvent("boom").Message)
	assert.Equal(t, EventTerminated, TerminatedEvent().Kind)
}

func TestEntryFromEvent(t *testing.T) {
	entry, ok := EntryFromEvent(ResponseEvent(TextResponse("t", "d")))
	require.True(t, ok)
	assert.Equal(t, EntryResponse, entry.Kind)
	assert.Equal(t, "t", entry.DisplayTitle())

	entry, ok = EntryFromEvent(ConnectedEvent("mcp"))
	require.True(t, ok)
	assert.Equal(t, EntryInfo, entry.Kind)

	entry, ok = EntryFromEvent(ErrorEvent("parse failed"))
	require.True(t, ok)
	assert.Equal(t, EntryError, entry.Kind)
	assert.Equal(t, "parse failed", entry.Detail)
}

func TestConversationPushMovesSelection(t *testing.T) {
	convo := NewConversation(UserPromptEntry("first"))
	assert.Equal(t, 0, convo.SelectedIndex())

	convo.Push(InfoEntry("second", ""))
	convo.Push(InfoEntry("third", ""))
	assert.Equal(t, 2, convo.SelectedIndex())
	assert.Len(t, convo.Entries(), 3)

	selected, ok := convo.Selected()
	require.True(t, ok)
	assert.Equal(t, "third", selected.DisplayTitle())
}

func TestConversationMoveSelectionClamps(t *testing.T) {
	convo := NewConversation(UserPromptEntry("a"))
	convo.Push(UserPromptEntry("b"))

	convo.MoveSelection(-10)
	assert.Equal(t, 0, convo.SelectedIndex())

	convo.MoveSelection(10)
	assert.Equal(t, 1, convo.SelectedIndex())
}

func TestConversationSetSelectionClamps(t *testing.T) {
	convo := NewConversation(UserPromptEntry("a"))
	convo.SetSelection(99)
	assert.Equal(t, 0, convo.SelectedIndex())
}
