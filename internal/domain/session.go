package domain

// EntryKind classifies one conversation panel entry.
type EntryKind string

const (
	EntryUserPrompt EntryKind = "user_prompt"
	EntryResponse   EntryKind = "response"
	EntryInfo       EntryKind = "info"
	EntryError      EntryKind = "error"
	EntryToolOutput EntryKind = "tool_output"
)

// PanelEntry is one displayable item in the agent conversation history.
// Folding user input, responses and system notices into one type keeps the
// consuming list rendering in the front end simple.
type PanelEntry struct {
	Kind     EntryKind `json:"kind"`
	Prompt   string    `json:"prompt,omitempty"`
	Response Response  `json:"response"`
	Title    string    `json:"title,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Tool     string    `json:"tool,omitempty"`
}

func UserPromptEntry(prompt string) PanelEntry {
	return PanelEntry{Kind: EntryUserPrompt, Prompt: prompt}
}

func ResponseEntry(resp Response) PanelEntry {
	return PanelEntry{Kind: EntryResponse, Response: resp}
}

func InfoEntry(title, detail string) PanelEntry {
	return PanelEntry{Kind: EntryInfo, Title: title, Detail: detail}
}

func ErrorEntry(title, detail string) PanelEntry {
	return PanelEntry{Kind: EntryError, Title: title, Detail: detail}
}

func ToolOutputEntry(tool, detail string) PanelEntry {
	return PanelEntry{Kind: EntryToolOutput, Tool: tool, Detail: detail}
}

// DisplayTitle returns the one-line heading used by list views.
func (e PanelEntry) DisplayTitle() string {
	switch e.Kind {
	case EntryUserPrompt:
		return e.Prompt
	case EntryResponse:
		return e.Response.Title
	case EntryToolOutput:
		return e.Tool
	default:
		return e.Title
	}
}

// EntryFromEvent maps a backend event onto a panel entry, or false for
// events that carry no conversation content.
func EntryFromEvent(ev Event) (PanelEntry, bool) {
	switch ev.Kind {
	case EventConnected:
		return InfoEntry("Connected", ev.Name), true
	case EventResponse:
		return ResponseEntry(ev.Response), true
	case EventToolOutput:
		return ToolOutputEntry(ev.Tool, ev.Detail), true
	case EventError:
		return ErrorEntry("Agent error", ev.Message), true
	case EventTerminated:
		return InfoEntry("Disconnected", "agent stream ended"), true
	default:
		return PanelEntry{}, false
	}
}

// Conversation is the ordered panel log plus the current selection cursor.
type Conversation struct {
	entries  []PanelEntry
	selected int
}

// NewConversation creates a conversation seeded with one entry.
func NewConversation(entry PanelEntry) *Conversation {
	return &Conversation{entries: []PanelEntry{entry}}
}

// Entries returns the ordered entry list.
func (c *Conversation) Entries() []PanelEntry {
	return c.entries
}

// Push appends an entry and moves the selection onto it.
func (c *Conversation) Push(entry PanelEntry) {
	c.entries = append(c.entries, entry)
	c.selected = len(c.entries) - 1
}

// Selected returns the currently selected entry, or false when empty.
func (c *Conversation) Selected() (PanelEntry, bool) {
	if c.selected >= len(c.entries) {
		return PanelEntry{}, false
	}
	return c.entries[c.selected], true
}

// SelectedIndex returns the selection cursor.
func (c *Conversation) SelectedIndex() int {
	return c.selected
}

// MoveSelection shifts the selection by delta, clamped to the entry range.
func (c *Conversation) MoveSelection(delta int) {
	if len(c.entries) == 0 {
		return
	}
	next := c.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(c.entries) {
		next = len(c.entries) - 1
	}
	c.selected = next
}

// SetSelection moves the selection to index, clamped to the entry range.
func (c *Conversation) SetSelection(index int) {
	if len(c.entries) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(c.entries)-1 {
		index = len(c.entries) - 1
	}
	c.selected = index
}
