package detect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
)

// candidateNames are the command names probed for, in preference order.
var candidateNames = []string{"claude", "claude-code"}

// Detector is the common contract of the three platform detectors. A
// detector is selected once at startup and never switched at runtime.
type Detector interface {
	// Detect runs the ordered probing pipeline and returns a Result; a
	// failed pipeline returns a structured not-found Result, never nil.
	Detect(ctx context.Context) *Result

	// Verify reports whether path is an executable CLI right now.
	Verify(ctx context.Context, path string) bool

	// Execute runs the detected CLI with args. It fails with
	// detecterr.ErrNotDetected before a successful Detect.
	Execute(ctx context.Context, args []string, workingDir string, opts execraw.Options) (*execraw.Result, error)

	// StartSession spawns a long-lived interactive CLI process whose
	// output streams to consumer as it arrives.
	StartSession(ctx context.Context, workingDir string, args []string, consumer Consumer) (*Session, error)

	// IsAvailable cheaply reports whether the CLI looks usable here:
	// a remembered successful detection, or a fast single probe.
	IsAvailable(ctx context.Context) bool

	// Version returns the detected CLI version; it fails before a
	// successful Detect.
	Version() (string, error)

	// Adopt seeds the remembered detection with an externally sourced
	// result, typically a cache restore.
	Adopt(r *Result)
}

// probe is one step of a detection pipeline: a named strategy that either
// yields a successful Result or reports why it did not.
type probe struct {
	name string
	run  func(ctx context.Context) *Result
}

// runPipeline evaluates probes in order and returns the first success plus
// the names of every step tried. Step failures are logged and swallowed:
// ordering matters because earlier, cheaper strategies must win.
func runPipeline(ctx context.Context, log *slog.Logger, probes []probe) (*Result, []string) {
	tried := make([]string, 0, len(probes))

	for _, p := range probes {
		tried = append(tried, p.name)

		result := p.run(ctx)
		if result != nil && result.Success {
			log.Debug("probe succeeded", "probe", p.name, "cli_path", result.CLIPath)

			return result, tried
		}

		log.Debug("probe failed, trying next", "probe", p.name)
	}

	return nil, tried
}

// lastResult is the shared "remember the last detection" state embedded by
// every detector.
type lastResult struct {
	mu   sync.Mutex
	last *Result
}

func (l *lastResult) remember(r *Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = r
}

// Adopt implements the shared Adopt contract.
func (l *lastResult) Adopt(r *Result) {
	l.remember(r)
}

// current returns the last successful result, or ErrNotDetected.
func (l *lastResult) current() (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil || !l.last.Success {
		return nil, detecterr.ErrNotDetected
	}

	return l.last, nil
}

// Version implements the shared Version contract.
func (l *lastResult) Version() (string, error) {
	r, err := l.current()
	if err != nil {
		return "", err
	}

	return r.Version, nil
}
