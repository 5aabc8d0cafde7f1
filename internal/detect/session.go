package detect

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"

	"github.com/zhsama/claudetect/internal/execraw"
)

// DefaultKillGrace is how long Close waits between the graceful terminate
// request and the forced process-tree kill.
const DefaultKillGrace = 5 * time.Second

// Consumer receives a session's output as it arrives. Delivery is per-stream
// FIFO; no ordering holds between the two streams. Nil callbacks discard.
type Consumer struct {
	OnStdout func(chunk []byte)
	OnStderr func(chunk []byte)
}

// SessionOptions configures StartSession.
type SessionOptions struct {
	// KeepStdinOpen leaves the child's stdin writable for interactive use.
	// By default stdin is closed immediately after spawn: a programmatic
	// invocation otherwise leaves the CLI blocked waiting for interactive
	// input that will never arrive.
	KeepStdinOpen bool
}

// Session is a live long-lived CLI process. The caller owns its lifetime
// and must end it with Wait or Close.
type Session struct {
	// ID uniquely names the session for logging and registries.
	ID string

	handle *execraw.Handle
	log    *slog.Logger
	group  *errgroup.Group
	done   chan struct{}
	err    error
}

// newSession wraps a spawned handle and starts the stream pumps.
func newSession(
	log *slog.Logger,
	handle *execraw.Handle,
	consumer Consumer,
	opts SessionOptions,
) *Session {
	id := ulid.Make().String()

	s := &Session{
		ID:     id,
		handle: handle,
		log:    log.With("component", "session", "session_id", id),
		done:   make(chan struct{}),
	}

	if !opts.KeepStdinOpen {
		_ = handle.Stdin.Close()
	}

	var g errgroup.Group

	g.Go(func() error { return pump(handle.Stdout, consumer.OnStdout) })
	g.Go(func() error { return pump(handle.Stderr, consumer.OnStderr) })

	s.group = &g

	go func() {
		// Both pipes must drain before Wait.
		_ = g.Wait()

		s.err = handle.Cmd.Wait()
		close(s.done)
	}()

	return s
}

// pump forwards a stream chunk-by-chunk until EOF.
func pump(r io.Reader, deliver func([]byte)) error {
	buf := make([]byte, 4096)

	for {
		n, err := r.Read(buf)
		if n > 0 && deliver != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			deliver(chunk)
		}

		if err != nil {
			if err == io.EOF {
				return nil
			}

			// Pipe closed by a kill is a normal shutdown path.
			return nil
		}
	}
}

// PID returns the child's process id.
func (s *Session) PID() int { return s.handle.PID() }

// Running reports whether the process has not yet exited.
func (s *Session) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Write sends input to the session. It fails once stdin is closed.
func (s *Session) Write(data []byte) (int, error) {
	return s.handle.Stdin.Write(data)
}

// CloseStdin signals end of input.
func (s *Session) CloseStdin() error {
	return s.handle.Stdin.Close()
}

// Wait blocks until the process exits and returns its wait error.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the session cooperatively: request a graceful terminate, wait
// up to grace, then force-kill the entire process tree, not just the
// immediate child, which may have spawned its own helpers.
func (s *Session) Close(grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultKillGrace
	}

	if !s.Running() {
		return nil
	}

	pid := s.PID()

	s.log.Debug("terminating session", "pid", pid, "grace", grace)

	s.terminate()

	select {
	case <-s.done:
		return nil
	case <-time.After(grace):
	}

	s.log.Warn("session ignored terminate, killing process tree", "pid", pid)

	killTree(int32(pid))

	select {
	case <-s.done:
	case <-time.After(grace):
	}

	return nil
}

// terminate sends the platform's graceful stop request.
func (s *Session) terminate() {
	proc := s.handle.Cmd.Process
	if proc == nil {
		return
	}

	if runtime.GOOS == "windows" {
		// Windows has no SIGTERM; closing stdin is the only soft signal.
		_ = s.handle.Stdin.Close()

		return
	}

	_ = proc.Signal(os.Interrupt)
}

// killTree kills pid and all of its descendants, deepest first.
func killTree(pid int32) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return
	}

	children, err := proc.Children()
	if err == nil {
		for _, child := range children {
			killTree(child.Pid)
		}
	}

	_ = proc.Kill()
}
