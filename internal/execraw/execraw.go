package execraw

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds generic probing commands.
	DefaultTimeout = 30 * time.Second

	// CLITimeout bounds invocations of the Claude CLI itself, which may
	// legitimately run for minutes.
	CLITimeout = 5 * time.Minute
)

// Options configures a single command execution. The zero value is usable:
// DefaultTimeout, inherited environment, UTF-8 output.
type Options struct {
	// Timeout bounds the command. Zero means DefaultTimeout.
	Timeout time.Duration

	// Dir is the working directory. Empty means the process default.
	Dir string

	// Env overrides or adds environment variables on top of the inherited
	// environment.
	Env map[string]string

	// Encoding names the expected output encoding ("utf8", "utf16le",
	// "utf16be", "cp1252", "auto"). Empty means UTF-8 passthrough.
	Encoding string

	// LoginShell wraps the command through the user's default shell with -l,
	// so shell init files (and the PATH mutations version managers perform
	// there) are honored. GUI-launched processes on macOS and Linux start
	// without that environment.
	LoginShell bool

	// AugmentPath prepends well-known installation directories to PATH
	// before running. GUI processes often inherit a truncated PATH that
	// misses homebrew and user-local bin directories.
	AugmentPath bool
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}

	return o.Timeout
}

// Result is the terminal outcome of a one-shot command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// Signal is non-empty when the process was terminated rather than
	// exiting; "timeout" when the configured deadline killed it.
	Signal string

	Duration time.Duration
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0 && r.Signal == ""
}

// Handle is a live spawned process with its stdio pipes. The caller owns the
// handle's lifetime.
type Handle struct {
	Cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// PID returns the OS process id of the spawned process.
func (h *Handle) PID() int {
	if h.Cmd == nil || h.Cmd.Process == nil {
		return 0
	}

	return h.Cmd.Process.Pid
}

// Runner abstracts command execution so detectors can be tested with
// scripted fakes.
type Runner interface {
	// Run executes name with args and waits for completion, capturing both
	// streams. A non-zero exit or a timeout is a normal Result.
	Run(ctx context.Context, name string, args []string, opts Options) (*Result, error)

	// RunShell executes a full command line through a shell (login shell
	// when opts.LoginShell is set).
	RunShell(ctx context.Context, commandLine string, opts Options) (*Result, error)

	// Spawn starts a long-lived process with piped stdio and returns
	// without waiting.
	Spawn(ctx context.Context, name string, args []string, opts Options) (*Handle, error)
}

// OSRunner executes commands against the real operating system.
type OSRunner struct {
	log *slog.Logger
}

// Compile-time verification that OSRunner implements Runner.
var _ Runner = (*OSRunner)(nil)

// NewOSRunner creates a Runner backed by os/exec.
func NewOSRunner(log *slog.Logger) *OSRunner {
	return &OSRunner{log: log.With("component", "execraw")}
}

// Run implements Runner.
func (r *OSRunner) Run(
	ctx context.Context,
	name string,
	args []string,
	opts Options,
) (*Result, error) {
	if opts.LoginShell {
		return r.RunShell(ctx, ShellJoin(name, args), opts)
	}

	return r.run(ctx, name, args, opts)
}

// RunShell implements Runner.
func (r *OSRunner) RunShell(
	ctx context.Context,
	commandLine string,
	opts Options,
) (*Result, error) {
	shell, shellArgs := wrapInShell(commandLine, opts.LoginShell)

	// The wrapper shell must not re-wrap.
	opts.LoginShell = false

	return r.run(ctx, shell, shellArgs, opts)
}

func (r *OSRunner) run(
	ctx context.Context,
	name string,
	args []string,
	opts Options,
) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnv(opts)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   DecodeOutput(stdout.Bytes(), opts.Encoding),
		Stderr:   DecodeOutput(stderr.Bytes(), opts.Encoding),
		Duration: duration,
	}

	r.log.Debug("command finished",
		slog.String("command", strings.Join(cmd.Args, " ")),
		slog.String("dir", opts.Dir),
		slog.Duration("duration", duration),
		slog.Any("error", err),
	)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			result.ExitCode = -1
			result.Signal = "timeout"

			return result, nil
		}

		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if result.ExitCode == -1 {
				if ws, ok := exitErr.Sys().(interface{ Signaled() bool }); ok && ws.Signaled() {
					result.Signal = exitErr.String()
				}
			}

			return result, nil
		}

		return nil, fmt.Errorf("start command %q: %w", name, err)
	}

	return result, nil
}

// Spawn implements Runner. Stdin, stdout, and stderr are piped; the caller
// is responsible for Wait and for closing stdin.
func (r *OSRunner) Spawn(
	ctx context.Context,
	name string,
	args []string,
	opts Options,
) (*Handle, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnv(opts)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", name, err)
	}

	r.log.Debug("process spawned",
		slog.String("command", name),
		slog.Int("pid", cmd.Process.Pid),
	)

	return &Handle{Cmd: cmd, Stdin: stdin, Stdout: stdout, Stderr: stderr}, nil
}

// buildEnv merges Options.Env over the inherited environment and optionally
// augments PATH.
func buildEnv(opts Options) []string {
	if len(opts.Env) == 0 && !opts.AugmentPath {
		return nil // Inherit parent environment unchanged.
	}

	env := os.Environ()

	if opts.AugmentPath {
		env = setEnv(env, "PATH", AugmentedPath(os.Getenv("PATH")))
	}

	for k, v := range opts.Env {
		env = setEnv(env, k, v)
	}

	return env
}

// setEnv replaces key in env or appends it.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value

			return env
		}
	}

	return append(env, prefix+value)
}

// wrapInShell converts a command line into a shell invocation. With login
// set, the user's shell runs with -l so init files are sourced.
func wrapInShell(commandLine string, login bool) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd.exe", []string{"/c", commandLine}
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	if login {
		return shell, []string{"-l", "-c", commandLine}
	}

	return shell, []string{"-c", commandLine}
}

// ShellJoin builds a shell command line from an argv, quoting arguments that
// need it.
func ShellJoin(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(name))
	for _, a := range args {
		parts = append(parts, ShellQuote(a))
	}

	return strings.Join(parts, " ")
}

// ShellQuote quotes a single argument for POSIX sh.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}

	if !strings.ContainsAny(s, " \t\n\"'\\$&|;<>()*?[]#~%{}") {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
