package detect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
	"github.com/zhsama/claudetect/internal/settings"
)

// unixSuggestions is the remediation advice attached to a failed detection
// on macOS and Linux.
var unixSuggestions = []string{
	"Install the CLI: npm install -g @anthropic-ai/claude-code",
	"If installed through a Node version manager, open a new login shell and retry",
	"Set the cli.path setting (or CLAUDETECT_CLI_PATH) to the binary's absolute path",
}

// UnixDetector finds the CLI on macOS and Linux. Probing order is version
// managers first: a manager-owned shim must be attributed to its manager
// even when the shim is also reachable through PATH.
type UnixDetector struct {
	lastResult

	runner   execraw.Runner
	cfg      settings.Store
	log      *slog.Logger
	platform Platform

	// evalSymlinks is swappable for tests; the default is the real
	// filepath.EvalSymlinks.
	evalSymlinks func(string) (string, error)
}

// Compile-time verification that UnixDetector implements Detector.
var _ Detector = (*UnixDetector)(nil)

// NewUnixDetector creates the macOS/Linux detector.
func NewUnixDetector(runner execraw.Runner, cfg settings.Store, log *slog.Logger) *UnixDetector {
	return &UnixDetector{
		runner:       runner,
		cfg:          cfg,
		log:          log.With("component", "detect", "platform", CurrentPlatform()),
		platform:     CurrentPlatform(),
		evalSymlinks: filepath.EvalSymlinks,
	}
}

// Detect implements Detector.
func (d *UnixDetector) Detect(ctx context.Context) *Result {
	result, tried := runPipeline(ctx, d.log, d.probes())
	if result == nil {
		result = failure(d.platform, ModeNative, &detecterr.NotFoundError{
			Searched:    tried,
			Suggestions: unixSuggestions,
		}, unixSuggestions)
	}

	d.remember(result)

	return result
}

// probes builds the ordered pipeline: each version manager, plain
// login-shell lookup, bare direct invocation, and the user override as the
// final fallback.
func (d *UnixDetector) probes() []probe {
	var probes []probe

	for _, vm := range versionManagers {
		probes = append(probes, probe{
			name: MethodPackageManager(vm.Name),
			run:  d.managerProbe(vm),
		})
	}

	return append(probes,
		probe{name: MethodShell, run: d.probeShell},
		probe{name: MethodDirect, run: d.probeDirect},
		probe{name: MethodUserConfigured, run: d.probeUserConfigured},
	)
}

// probeUserConfigured trusts the configured override only after
// re-verifying it still answers --version.
func (d *UnixDetector) probeUserConfigured(ctx context.Context) *Result {
	path := d.cfg.CLIPath()
	if path == "" {
		return nil
	}

	if fi, err := os.Stat(path); err == nil && fi.Mode()&0o111 == 0 {
		d.log.Warn("configured CLI path is not executable",
			"error", &detecterr.PermissionDeniedError{Path: path, Err: os.ErrPermission})

		return nil
	}

	version, ok := d.verifyVersion(ctx, path)
	if !ok {
		d.log.Warn("configured CLI path failed verification", "cli_path", path)

		return nil
	}

	return d.success(path, version, MethodUserConfigured)
}

// managerProbe builds the probe for one version manager. A hit is claimed
// only when provenance confirms the resolved path is owned by that manager;
// otherwise a later, more accurate probe gets to attribute it.
func (d *UnixDetector) managerProbe(vm versionManager) func(context.Context) *Result {
	return func(ctx context.Context) *Result {
		res, err := d.runner.RunShell(ctx, vm.Lookup, execraw.Options{
			LoginShell:  true,
			AugmentPath: true,
		})
		if err != nil || !res.Success() {
			return nil
		}

		path := firstLine(res.Stdout)
		if path == "" || !strings.HasPrefix(path, "/") {
			return nil
		}

		resolved := d.resolve(path)

		owner, _ := provenance(resolved)
		if owner != vm.Name {
			return nil
		}

		version, ok := d.verifyVersion(ctx, path)
		if !ok {
			return nil
		}

		return d.success(path, version, MethodPackageManager(vm.Name))
	}
}

// probeShell asks a login shell to resolve each candidate name, so PATH
// mutations from shell init files are honored.
func (d *UnixDetector) probeShell(ctx context.Context) *Result {
	for _, name := range candidateNames {
		res, err := d.runner.RunShell(ctx, "command -v "+name, execraw.Options{
			LoginShell:  true,
			AugmentPath: true,
		})
		if err != nil || !res.Success() {
			continue
		}

		path := firstLine(res.Stdout)
		if path == "" {
			continue
		}

		version, ok := d.verifyVersion(ctx, path)
		if !ok {
			continue
		}

		return d.success(path, version, MethodShell)
	}

	return nil
}

// probeDirect invokes the bare command name without any shell wrapping.
// Resolution happens against this process's own PATH, so this only finds
// what the parent environment already exposes; it is a last resort for
// environments where no login shell is usable.
func (d *UnixDetector) probeDirect(ctx context.Context) *Result {
	for _, name := range candidateNames {
		res, err := d.runner.Run(ctx, name, []string{"--version"}, execraw.Options{})
		if err != nil || !res.Success() {
			continue
		}

		version := parseVersion(res.Stdout)
		if version == "" {
			continue
		}

		return d.success(name, version, MethodDirect)
	}

	return nil
}

// success assembles a successful Result with symlink resolution and
// provenance metadata.
func (d *UnixDetector) success(path, version, method string) *Result {
	r := &Result{
		Success:  true,
		Platform: d.platform,
		Mode:     ModeNative,
		CLIPath:  path,
		Version:  version,
		Method:   method,
	}

	if resolved := d.resolve(path); resolved != path {
		r.ResolvedPath = resolved
	}

	if manager, nodeVersion := provenance(r.BestPath()); manager != "" {
		r.setMeta(MetaPackageManager, manager)
		r.setMeta(MetaNodeVersion, nodeVersion)
		r.setMeta(MetaEnvironment, fmt.Sprintf("%s-managed node %s", manager, nodeVersion))
	}

	return r
}

// resolve follows symlinks, returning the input unchanged on any error or
// for bare command names.
func (d *UnixDetector) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}

	resolved, err := d.evalSymlinks(path)
	if err != nil {
		return path
	}

	return resolved
}

// verifyVersion runs "<path> --version" through a login shell and extracts
// the semantic version. Commands that run but print no recognizable version
// are not the CLI.
func (d *UnixDetector) verifyVersion(ctx context.Context, path string) (string, bool) {
	res, err := d.runner.RunShell(ctx, execraw.ShellQuote(path)+" --version", execraw.Options{
		LoginShell:  true,
		AugmentPath: true,
	})
	if err != nil || !res.Success() {
		return "", false
	}

	version := parseVersion(res.Stdout)

	return version, version != ""
}

// Verify implements Detector.
func (d *UnixDetector) Verify(ctx context.Context, path string) bool {
	_, ok := d.verifyVersion(ctx, path)

	return ok
}

// Execute implements Detector.
func (d *UnixDetector) Execute(
	ctx context.Context,
	args []string,
	workingDir string,
	opts execraw.Options,
) (*execraw.Result, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = execraw.CLITimeout
	}

	opts.Dir = workingDir
	opts.AugmentPath = true

	return d.runner.Run(ctx, r.CLIPath, args, opts)
}

// StartSession implements Detector.
func (d *UnixDetector) StartSession(
	ctx context.Context,
	workingDir string,
	args []string,
	consumer Consumer,
) (*Session, error) {
	return d.StartSessionOpts(ctx, workingDir, args, consumer, SessionOptions{})
}

// StartSessionOpts is StartSession with explicit session options.
func (d *UnixDetector) StartSessionOpts(
	ctx context.Context,
	workingDir string,
	args []string,
	consumer Consumer,
	sessOpts SessionOptions,
) (*Session, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	handle, err := d.runner.Spawn(ctx, r.CLIPath, args, execraw.Options{
		Dir:         workingDir,
		AugmentPath: true,
	})
	if err != nil {
		return nil, &detecterr.ExecutionFailedError{
			Command: r.CLIPath,
			Err:     err,
		}
	}

	return newSession(d.log, handle, consumer, sessOpts), nil
}

// IsAvailable implements Detector.
func (d *UnixDetector) IsAvailable(ctx context.Context) bool {
	if r, err := d.current(); err == nil && r.Success {
		return true
	}

	res, err := d.runner.RunShell(ctx, "command -v "+candidateNames[0], execraw.Options{
		LoginShell:  true,
		AugmentPath: true,
	})

	return err == nil && res.Success() && firstLine(res.Stdout) != ""
}

// firstLine returns the first non-empty trimmed line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}
