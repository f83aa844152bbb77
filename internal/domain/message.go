// Package domain holds the wire-level message and event types exchanged
// between the front end and agent backends.
package domain

import (
	"encoding/json"
	"fmt"
)

// Request is one outbound turn sent to the active agent backend. Field names
// are part of the newline-delimited JSON protocol spoken by local-process
// agents and must stay stable.
type Request struct {
	FilePath   *string         `json:"file_path"`
	Content    string          `json:"content"`
	CursorLine int             `json:"cursor_line"`
	CursorCol  int             `json:"cursor_col"`
	Language   *string         `json:"language,omitempty"`
	Selection  *string         `json:"selection,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// NewRequest builds a request carrying the full buffer and cursor position.
// Cursor coordinates are zero-based.
func NewRequest(filePath *string, content string, cursorLine, cursorCol int) Request {
	return Request{
		FilePath:   filePath,
		Content:    content,
		CursorLine: cursorLine,
		CursorCol:  cursorCol,
	}
}

// Response is one inbound suggestion from an agent backend.
type Response struct {
	Title  string          `json:"title"`
	Detail string          `json:"detail"`
	File   *string         `json:"file,omitempty"`
	Line   *int            `json:"line,omitempty"`
	Patch  *string         `json:"patch,omitempty"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// TextResponse builds a response holding only a title and detail text.
func TextResponse(title, detail string) Response {
	return Response{Title: title, Detail: detail}
}

// DecodeResponse parses one JSON document as a Response. A document only
// counts as a response when it is a JSON object carrying string "title" and
// "detail" fields; Go's permissive unmarshalling would otherwise accept any
// object and swallow malformed agent output that should surface as an error
// event.
func DecodeResponse(data []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Response{}, err
	}
	for _, name := range []string{"title", "detail"} {
		raw, ok := fields[name]
		if !ok {
			return Response{}, fmt.Errorf("missing %s field", name)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Response{}, fmt.Errorf("%s is not a string", name)
		}
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
