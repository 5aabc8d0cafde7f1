package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/zhsama/claudetect/internal/execraw"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner answers calls by substring match on the joined command line,
// first match wins. Unmatched commands exit 127.
type fakeRunner struct {
	responses []fakeResponse
	calls     []string
}

type fakeResponse struct {
	match  string
	result *execraw.Result
	err    error
}

func (f *fakeRunner) Run(
	_ context.Context, name string, args []string, _ execraw.Options,
) (*execraw.Result, error) {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, cmd)

	for _, r := range f.responses {
		if strings.Contains(cmd, r.match) {
			return r.result, r.err
		}
	}

	return &execraw.Result{ExitCode: 127, Stderr: "command not found"}, nil
}

func (f *fakeRunner) RunShell(
	ctx context.Context, commandLine string, opts execraw.Options,
) (*execraw.Result, error) {
	return f.Run(ctx, commandLine, nil, opts)
}

func (f *fakeRunner) Spawn(
	_ context.Context, _ string, _ []string, _ execraw.Options,
) (*execraw.Handle, error) {
	return nil, errors.New("fake runner cannot spawn")
}

func ok(stdout string) *execraw.Result {
	return &execraw.Result{ExitCode: 0, Stdout: stdout}
}
