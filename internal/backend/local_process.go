package backend

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

// ErrExecutableNotFound marks a spawn failure caused by a missing agent
// program, so the front end can show a targeted message.
var ErrExecutableNotFound = errors.New("agent executable not found")

// LocalProcessBackend drives a child process that reads requests and writes
// responses as newline-delimited JSON on its standard streams.
type LocalProcessBackend struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	queue      *eventQueue
	label      string
	log        *logging.Logger
	readers    sync.WaitGroup
	closeOnce  sync.Once
	terminated bool
}

// StartLocalProcess spawns the configured program with stdin/stdout/stderr
// piped and begins reading its output on two goroutines. The working
// directory defaults to the workspace root.
func StartLocalProcess(cfg config.LocalProcessConfig, workspaceRoot string, log *logging.Logger) (*LocalProcessBackend, error) {
	label := filepath.Base(cfg.Program)

	cmd := exec.Command(cfg.Program, cfg.Args...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	} else {
		cmd.Dir = workspaceRoot
	}
	if len(cfg.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, cfg.Program)
		}
		return nil, fmt.Errorf("starting agent process %s: %w", label, err)
	}

	b := &LocalProcessBackend{
		cmd:   cmd,
		stdin: stdin,
		queue: newEventQueue(),
		label: label,
		log:   log.Sub("backend.process"),
	}

	b.readers.Add(2)
	go b.readStdout(stdout)
	go b.readStderr(stderr)

	b.log.Debug().Str("program", cfg.Program).Int("pid", cmd.Process.Pid).Msg("agent process started")

	if cfg.StdinInitial != "" {
		if err := b.writeLine(cfg.StdinInitial); err != nil {
			b.Close()
			return nil, err
		}
	}

	return b, nil
}

// Name returns the executable basename.
func (b *LocalProcessBackend) Name() string { return b.label }

// Send serializes the request as a single JSON line on the child's stdin.
// Pipe writes at this size are fast enough to stay synchronous.
func (b *LocalProcessBackend) Send(req domain.Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("serializing agent request: %w", err)
	}
	return b.writeLine(string(payload))
}

func (b *LocalProcessBackend) writeLine(line string) error {
	if _, err := io.WriteString(b.stdin, line+"\n"); err != nil {
		return fmt.Errorf("writing agent request: %w", err)
	}
	return nil
}

// PollEvent drains one event. Once Terminated has been handed out, every
// later poll reports empty: the backend is dead and stale events must not
// leak out. A closed queue with no pending events synthesizes the final
// Terminated instead of surfacing the plumbing state.
func (b *LocalProcessBackend) PollEvent() (domain.Event, bool) {
	if b.terminated {
		return domain.Event{}, false
	}
	if ev, ok := b.queue.poll(); ok {
		if ev.Kind == domain.EventTerminated {
			b.terminated = true
		}
		return ev, true
	}
	if b.queue.closed() {
		b.terminated = true
		return domain.TerminatedEvent(), true
	}
	return domain.Event{}, false
}

// Close kills the child process and releases the queue. The process is
// reaped on a background goroutine so Close never blocks; "already exited"
// errors are ignored.
func (b *LocalProcessBackend) Close() {
	b.closeOnce.Do(func() {
		b.queue.close()
		if b.cmd.Process != nil {
			_ = b.cmd.Process.Kill()
		}
		go func() {
			b.readers.Wait()
			_ = b.cmd.Wait()
		}()
	})
}

func (b *LocalProcessBackend) readStdout(r io.Reader) {
	defer b.readers.Done()

	b.queue.push(domain.ConnectedEvent(b.label))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 256*1024), 256*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		resp, err := domain.DecodeResponse([]byte(line))
		if err != nil {
			if !b.queue.push(domain.ErrorEvent("response parse failed: " + line)) {
				return
			}
			continue
		}
		if !b.queue.push(domain.ResponseEvent(resp)) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		b.queue.push(domain.ErrorEvent(fmt.Sprintf("reading agent stdout: %v", err)))
	}
	b.queue.push(domain.TerminatedEvent())
}

func (b *LocalProcessBackend) readStderr(r io.Reader) {
	defer b.readers.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 256*1024), 256*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !b.queue.push(domain.ErrorEvent("stderr: " + line)) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		b.queue.push(domain.ErrorEvent(fmt.Sprintf("reading agent stderr: %v", err)))
	}
}
