package domain

// EventKind discriminates the Event union.
type EventKind string

const (
	// EventConnected is emitted once when a backend comes up; Name carries
	// its display label.
	EventConnected EventKind = "connected"
	// EventResponse carries one suggestion from the backend.
	EventResponse EventKind = "response"
	// EventToolOutput carries the result of a tool invocation.
	EventToolOutput EventKind = "tool_output"
	// EventError carries a displayable error message.
	EventError EventKind = "error"
	// EventTerminated signals that the backend's stream has ended. Emitted at
	// most once per backend; only subprocess backends produce it.
	EventTerminated EventKind = "terminated"
)

// Event is one unit of asynchronous output from a backend. Exactly the
// fields matching Kind are populated.
type Event struct {
	Kind     EventKind
	Name     string
	Response Response
	Tool     string
	Detail   string
	Message  string
}

func ConnectedEvent(name string) Event {
	return Event{Kind: EventConnected, Name: name}
}

func ResponseEvent(resp Response) Event {
	return Event{Kind: EventResponse, Response: resp}
}

func ToolOutputEvent(tool, detail string) Event {
	return Event{Kind: EventToolOutput, Tool: tool, Detail: detail}
}

func ErrorEvent(message string) Event {
	return Event{Kind: EventError, Message: message}
}

func TerminatedEvent() Event {
	return Event{Kind: EventTerminated}
}
