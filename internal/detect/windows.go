package detect

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
	"github.com/zhsama/claudetect/internal/gitbash"
	"github.com/zhsama/claudetect/internal/settings"
	"github.com/zhsama/claudetect/internal/winpath"
)

// windowsSuggestions is the remediation advice for a failed native Windows
// detection.
var windowsSuggestions = []string{
	"Install the CLI: npm install -g @anthropic-ai/claude-code",
	"Install Git for Windows so detection can probe through its shell: https://gitforwindows.org",
	"Set the cli.path setting (or CLAUDETECT_CLI_PATH) to the binary's absolute path",
}

// bashLocator is the slice of gitbash.Locator the detector needs, kept as
// an interface so tests can script shell location and execution.
type bashLocator interface {
	Locate(ctx context.Context) gitbash.Info
	RunCommand(ctx context.Context, bashPath, command string, opts execraw.Options) (*execraw.Result, error)
}

// GitBashDetector finds the CLI on native Windows by probing through Git
// Bash. Resolving through a POSIX shell rather than cmd.exe makes version
// manager shims and npm's .cmd wrappers behave identically to Unix hosts.
type GitBashDetector struct {
	lastResult

	runner  execraw.Runner
	locator bashLocator
	cfg     settings.Store
	log     *slog.Logger
}

// Compile-time verification that GitBashDetector implements Detector.
var _ Detector = (*GitBashDetector)(nil)

// NewGitBashDetector creates the native Windows detector.
func NewGitBashDetector(runner execraw.Runner, cfg settings.Store, log *slog.Logger) *GitBashDetector {
	return &GitBashDetector{
		runner:  runner,
		locator: gitbash.NewLocator(runner, log),
		cfg:     cfg,
		log:     log.With("component", "detect", "platform", PlatformWindows),
	}
}

// Detect implements Detector.
func (d *GitBashDetector) Detect(ctx context.Context) *Result {
	bash := d.locator.Locate(ctx)
	if !bash.Available {
		result := failure(PlatformWindows, ModeNative, &detecterr.SubsystemUnavailableError{
			Subsystem:   "git-bash",
			Detail:      "no bash.exe located via PATH, well-known paths, or the registry",
			Suggestions: windowsSuggestions,
		}, windowsSuggestions)
		d.remember(result)

		return result
	}

	result, tried := runPipeline(ctx, d.log, d.probes(bash.BashPath))
	if result == nil {
		result = failure(PlatformWindows, ModeNative, &detecterr.NotFoundError{
			Searched:    tried,
			Suggestions: windowsSuggestions,
		}, windowsSuggestions)
	}

	d.remember(result)

	return result
}

// probes builds the ordered pipeline: in-shell lookup first, then the
// version managers, then the user override, with a shell-free .cmd
// invocation as the final fallback.
func (d *GitBashDetector) probes(bashPath string) []probe {
	probes := []probe{
		{name: MethodShell, run: func(ctx context.Context) *Result {
			return d.probeShell(ctx, bashPath)
		}},
	}

	for _, vm := range versionManagers {
		probes = append(probes, probe{
			name: MethodPackageManager(vm.Name),
			run:  d.managerProbe(bashPath, vm),
		})
	}

	return append(probes,
		probe{name: MethodUserConfigured, run: func(ctx context.Context) *Result {
			return d.probeUserConfigured(ctx, bashPath)
		}},
		probe{name: MethodDirect, run: d.probeDirect},
	)
}

// managerProbe runs one version manager's lookup inside Git Bash. As on
// Unix, a hit is claimed only when the resolved path is owned by that
// manager.
func (d *GitBashDetector) managerProbe(bashPath string, vm versionManager) func(context.Context) *Result {
	return func(ctx context.Context) *Result {
		res, err := d.locator.RunCommand(ctx, bashPath, vm.Lookup, execraw.Options{})
		if err != nil || !res.Success() {
			return nil
		}

		path := firstLine(res.Stdout)
		if path == "" {
			return nil
		}

		owner, nodeVersion := provenance(path)
		if owner != vm.Name {
			return nil
		}

		version, ok := d.verifyInBash(ctx, bashPath, execraw.ShellQuote(path))
		if !ok {
			return nil
		}

		r := d.success(path, version, MethodPackageManager(vm.Name))
		r.setMeta(MetaPackageManager, vm.Name)
		r.setMeta(MetaNodeVersion, nodeVersion)

		return r
	}
}

func (d *GitBashDetector) probeUserConfigured(ctx context.Context, bashPath string) *Result {
	path := d.cfg.CLIPath()
	if path == "" {
		return nil
	}

	// A user-supplied Windows path needs forward slashes before bash can
	// exec it.
	inBash := strings.ReplaceAll(path, `\`, "/")

	version, ok := d.verifyInBash(ctx, bashPath, execraw.ShellQuote(inBash))
	if !ok {
		d.log.Warn("configured CLI path failed verification", "cli_path", path)

		return nil
	}

	return d.success(path, version, MethodUserConfigured)
}

// probeShell resolves each candidate through Git Bash's own PATH, which is
// sanitized of WSL mounts before the lookup runs.
func (d *GitBashDetector) probeShell(ctx context.Context, bashPath string) *Result {
	for _, name := range candidateNames {
		res, err := d.locator.RunCommand(ctx, bashPath, "command -v "+name, execraw.Options{})
		if err != nil || !res.Success() {
			continue
		}

		path := firstLine(res.Stdout)
		if path == "" {
			continue
		}

		version, ok := d.verifyInBash(ctx, bashPath, execraw.ShellQuote(path))
		if !ok {
			continue
		}

		return d.success(path, version, MethodShell)
	}

	return nil
}

// probeDirect invokes the npm .cmd wrapper without a shell, covering hosts
// where Git Bash exists but its PATH misses the npm prefix.
func (d *GitBashDetector) probeDirect(ctx context.Context) *Result {
	for _, name := range candidateNames {
		for _, invoked := range []string{name + ".cmd", name} {
			res, err := d.runner.Run(ctx, invoked, []string{"--version"}, execraw.Options{})
			if err != nil || !res.Success() {
				continue
			}

			version := parseVersion(res.Stdout)
			if version == "" {
				continue
			}

			return d.success(invoked, version, MethodDirect)
		}
	}

	return nil
}

// success assembles a successful native Windows Result. The path kind is
// recorded because bash reports Unix-style paths (/c/Users/...) that native
// consumers must not treat as filesystem paths.
func (d *GitBashDetector) success(path, version, method string) *Result {
	r := &Result{
		Success:  true,
		Platform: PlatformWindows,
		Mode:     ModeNative,
		CLIPath:  path,
		Version:  version,
		Method:   method,
	}

	r.setMeta(MetaPathKind, classifyPathKind(path))
	r.setMeta(MetaEnvironment, "git-bash")

	return r
}

// classifyPathKind labels a detected path for consumers: "windows" for
// drive-letter paths, "unix" for bash-style /c/... or bare names.
func classifyPathKind(path string) string {
	if winpath.DetectKind(path) == winpath.KindWindows {
		return "windows"
	}

	return "unix"
}

// verifyInBash runs "<invocable> --version" inside Git Bash. invocable must
// already be quoted or slash-normalized for bash.
func (d *GitBashDetector) verifyInBash(ctx context.Context, bashPath, invocable string) (string, bool) {
	res, err := d.locator.RunCommand(ctx, bashPath, invocable+" --version", execraw.Options{})
	if err != nil || !res.Success() {
		return "", false
	}

	version := parseVersion(res.Stdout)

	return version, version != ""
}

// Verify implements Detector.
func (d *GitBashDetector) Verify(ctx context.Context, path string) bool {
	bash := d.locator.Locate(ctx)
	if !bash.Available {
		return false
	}

	inBash := strings.ReplaceAll(path, `\`, "/")
	_, ok := d.verifyInBash(ctx, bash.BashPath, execraw.ShellQuote(inBash))

	return ok
}

// Execute implements Detector.
func (d *GitBashDetector) Execute(
	ctx context.Context,
	args []string,
	workingDir string,
	opts execraw.Options,
) (*execraw.Result, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	bash := d.locator.Locate(ctx)
	if !bash.Available {
		return nil, &detecterr.SubsystemUnavailableError{
			Subsystem: "git-bash",
			Detail:    "shell disappeared after detection",
		}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = execraw.CLITimeout
	}

	opts.Dir = workingDir

	inBash := strings.ReplaceAll(r.CLIPath, `\`, "/")
	command := execraw.ShellJoin(inBash, args)

	return d.locator.RunCommand(ctx, bash.BashPath, command, opts)
}

// StartSession implements Detector.
func (d *GitBashDetector) StartSession(
	ctx context.Context,
	workingDir string,
	args []string,
	consumer Consumer,
) (*Session, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	bash := d.locator.Locate(ctx)
	if !bash.Available {
		return nil, &detecterr.SubsystemUnavailableError{
			Subsystem: "git-bash",
			Detail:    "shell disappeared after detection",
		}
	}

	inBash := strings.ReplaceAll(r.CLIPath, `\`, "/")
	command := execraw.ShellJoin(inBash, args)

	handle, err := d.runner.Spawn(ctx, bash.BashPath, []string{"-c", command}, execraw.Options{
		Dir: workingDir,
	})
	if err != nil {
		return nil, &detecterr.ExecutionFailedError{Command: command, Err: err}
	}

	return newSession(d.log, handle, consumer, SessionOptions{}), nil
}

// IsAvailable implements Detector.
func (d *GitBashDetector) IsAvailable(ctx context.Context) bool {
	if r, err := d.current(); err == nil && r.Success {
		return true
	}

	bash := d.locator.Locate(ctx)
	if !bash.Available {
		return false
	}

	res, err := d.locator.RunCommand(ctx, bash.BashPath, "command -v "+candidateNames[0], execraw.Options{})

	return err == nil && res.Success() && firstLine(res.Stdout) != ""
}
