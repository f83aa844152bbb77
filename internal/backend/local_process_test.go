package backend

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return logging.New(os.Stderr, "silent")
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// waitEvent polls until the backend yields an event or the deadline passes.
func waitEvent(t *testing.T, b Backend) domain.Event {
	t.Helper()
	var ev domain.Event
	require.Eventually(t, func() bool {
		got, ok := b.PollEvent()
		if ok {
			ev = got
		}
		return ok
	}, 5*time.Second, 5*time.Millisecond)
	return ev
}

func TestLocalProcessEchoRoundTrip(t *testing.T) {
	script := writeScript(t, "echo-agent.sh",
		`while read -r line; do echo '{"title":"echo","detail":"ok"}'; done`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()

	ev := waitEvent(t, b)
	require.Equal(t, domain.EventConnected, ev.Kind)
	assert.Equal(t, "echo-agent.sh", ev.Name)
	assert.Equal(t, "echo-agent.sh", b.Name())

	require.NoError(t, b.Send(domain.NewRequest(nil, "hello", 0, 0)))

	ev = waitEvent(t, b)
	require.Equal(t, domain.EventResponse, ev.Kind)
	assert.Equal(t, "echo", ev.Response.Title)
	assert.Equal(t, "ok", ev.Response.Detail)
}

func TestLocalProcessMalformedLine(t *testing.T) {
	script := writeScript(t, "bad-agent.sh",
		`read -r line
echo 'not json at all'
echo '{"title":"fine","detail":"d"}'`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()

	ev := waitEvent(t, b)
	require.Equal(t, domain.EventConnected, ev.Kind)

	require.NoError(t, b.Send(domain.NewRequest(nil, "go", 0, 0)))

	ev = waitEvent(t, b)
	require.Equal(t, domain.EventError, ev.Kind)
	assert.Contains(t, ev.Message, "response parse failed")
	assert.Contains(t, ev.Message, "not json at all")

	ev = waitEvent(t, b)
	require.Equal(t, domain.EventResponse, ev.Kind)
	assert.Equal(t, "fine", ev.Response.Title)
}

func TestLocalProcessStderrSurfacesAsErrors(t *testing.T) {
	script := writeScript(t, "noisy-agent.sh",
		`echo 'warming up' >&2
sleep 5`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()

	var seen []domain.Event
	require.Eventually(t, func() bool {
		if ev, ok := b.PollEvent(); ok {
			seen = append(seen, ev)
		}
		for _, ev := range seen {
			if ev.Kind == domain.EventError {
				return true
			}
		}
		return false
	}, 5*time.Second, 5*time.Millisecond)

	var errEv domain.Event
	for _, ev := range seen {
		if ev.Kind == domain.EventError {
			errEv = ev
		}
	}
	assert.Equal(t, "stderr: warming up", errEv.Message)
}

func TestLocalProcessExitYieldsSingleTerminated(t *testing.T) {
	script := writeScript(t, "quitter.sh", `exit 0`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()

	ev := waitEvent(t, b)
	require.Equal(t, domain.EventConnected, ev.Kind)

	ev = waitEvent(t, b)
	require.Equal(t, domain.EventTerminated, ev.Kind)

	// The latch holds: no further events, ever.
	for i := 0; i < 10; i++ {
		_, ok := b.PollEvent()
		assert.False(t, ok)
	}
}

func TestLocalProcessCloseKillsProcess(t *testing.T) {
	script := writeScript(t, "sleeper.sh", `sleep 60`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)

	proc := b.cmd.Process
	require.NotNil(t, proc)

	b.Close()

	require.Eventually(t, func() bool {
		// Signal 0 probes liveness without delivering anything.
		return proc.Signal(syscall.Signal(0)) != nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestLocalProcessCloseSynthesizesTerminated(t *testing.T) {
	script := writeScript(t, "sleeper.sh", `sleep 60`)

	b, err := StartLocalProcess(config.LocalProcessConfig{Program: script}, t.TempDir(), testLogger(t))
	require.NoError(t, err)

	// Drain whatever arrived before teardown, then close.
	for {
		if _, ok := b.PollEvent(); !ok {
			break
		}
	}
	b.Close()

	require.Eventually(t, func() bool {
		ev, ok := b.PollEvent()
		return ok && ev.Kind == domain.EventTerminated
	}, 5*time.Second, 5*time.Millisecond)

	_, ok := b.PollEvent()
	assert.False(t, ok)
}

func TestLocalProcessMissingExecutable(t *testing.T) {
	_, err := StartLocalProcess(config.LocalProcessConfig{
		Program: filepath.Join(t.TempDir(), "no-such-agent"),
	}, t.TempDir(), testLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}

func TestLocalProcessStdinInitial(t *testing.T) {
	script := writeScript(t, "greeting-agent.sh",
		`read -r first
echo "{\"title\":\"greeting\",\"detail\":\"$first\"}"`)

	b, err := StartLocalProcess(config.LocalProcessConfig{
		Program:      script,
		StdinInitial: "hello-agent",
	}, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()

	ev := waitEvent(t, b)
	require.Equal(t, domain.EventConnected, ev.Kind)

	ev = waitEvent(t, b)
	require.Equal(t, domain.EventResponse, ev.Kind)
	assert.Equal(t, "hello-agent", ev.Response.Detail)
}

func TestEventQueuePollEmpty(t *testing.T) {
	q := newEventQueue()
	_, ok := q.poll()
	assert.False(t, ok)
	_, ok = q.poll()
	assert.False(t, ok)
}

func TestEventQueuePushAfterClose(t *testing.T) {
	q := newEventQueue()
	q.close()
	assert.False(t, q.push(domain.ErrorEvent("late")))
	_, ok := q.poll()
	assert.False(t, ok)
}
