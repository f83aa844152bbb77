// Package backend implements the transport-specific agent connections:
// local subprocess stdio, provider HTTP APIs, and MCP structured RPC.
//
// Every backend owns a private event queue. Transport I/O runs on background
// goroutines that produce into the queue; the front end's tick loop drains it
// through PollEvent without ever blocking.
package backend

import (
	"fmt"
	"sync"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

// Backend is a live agent connection.
type Backend interface {
	// Name returns the stable display label for this connection.
	Name() string

	// Send enqueues one outbound turn. It must not block beyond issuing the
	// I/O; asynchronous failures surface later as error events, never here.
	Send(req domain.Request) error

	// PollEvent drains one event from the queue. The second return is false
	// when the queue is empty. Safe to call every UI tick.
	PollEvent() (domain.Event, bool)

	// Close releases the backend's resources. It must not block
	// indefinitely and is safe to call more than once.
	Close()
}

// New constructs the backend matching the profile's transport.
func New(profile config.AgentProfile, workspaceRoot string, log *logging.Logger) (Backend, error) {
	switch profile.Transport.Kind {
	case config.TransportLocalProcess:
		if profile.Transport.LocalProcess == nil {
			return nil, fmt.Errorf("profile %s: missing localProcess config", profile.ID)
		}
		return StartLocalProcess(*profile.Transport.LocalProcess, workspaceRoot, log)
	case config.TransportHTTPAPI:
		if profile.Transport.HTTPAPI == nil {
			return nil, fmt.Errorf("profile %s: missing httpApi config", profile.ID)
		}
		return NewHTTP(*profile.Transport.HTTPAPI, log)
	case config.TransportMCP:
		if profile.Transport.MCP == nil {
			return nil, fmt.Errorf("profile %s: missing mcp config", profile.ID)
		}
		return NewMCP(*profile.Transport.MCP, log)
	default:
		return nil, fmt.Errorf("profile %s: unknown transport kind %q", profile.ID, profile.Transport.Kind)
	}
}

// eventQueue is the producer/consumer channel between a backend's I/O
// goroutines and the polling front end. Events are small and bounded by
// human-paced interaction, so a generous buffer stands in for an unbounded
// queue; the done channel lets producers give up once the backend closes
// instead of blocking forever.
type eventQueue struct {
	events    chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make(chan domain.Event, 256),
		done:   make(chan struct{}),
	}
}

// push delivers ev unless the queue is closed. Delivery after close is
// best-effort: the event is dropped and push reports false.
func (q *eventQueue) push(ev domain.Event) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.events <- ev:
		return true
	case <-q.done:
		return false
	}
}

// poll drains one event without blocking.
func (q *eventQueue) poll() (domain.Event, bool) {
	select {
	case ev := <-q.events:
		return ev, true
	default:
		return domain.Event{}, false
	}
}

func (q *eventQueue) close() {
	q.closeOnce.Do(func() { close(q.done) })
}

func (q *eventQueue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
