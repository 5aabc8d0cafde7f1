package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
	"github.com/zhsama/claudetect/internal/settings"
	"github.com/zhsama/claudetect/internal/winpath"
	"github.com/zhsama/claudetect/internal/wsl"
)

// wslSuggestions is the remediation advice for a failed WSL detection.
var wslSuggestions = []string{
	"Install the CLI inside the distribution: npm install -g @anthropic-ai/claude-code",
	"If installed through nvm, the CLI only resolves in a login shell; check ~/.bashrc sources nvm",
	"Pin a distribution with the wsl.distribution setting when the default one lacks the CLI",
}

// searchRoots are the in-distribution paths scanned by the filesystem
// fallback probe, glob-expanded inside the distribution's shell.
var searchRoots = []string{
	"$HOME/.nvm/versions/node/*/bin",
	"$HOME/.local/bin",
	"$HOME/.npm-global/bin",
	"$HOME/.yarn/bin",
	"$HOME/.bun/bin",
	"/usr/local/bin",
	"/usr/bin",
}

// WSLDetector finds the CLI inside a Windows Subsystem for Linux
// distribution. Every distribution is probed in order until one hosts a
// working CLI; the winning distribution is remembered and all later
// invocations are retargeted at it.
type WSLDetector struct {
	lastResult

	runner execraw.Runner
	mgr    *wsl.Manager
	cfg    settings.Store
	log    *slog.Logger
}

// Compile-time verification that WSLDetector implements Detector.
var _ Detector = (*WSLDetector)(nil)

// NewWSLDetector creates the WSL detector.
func NewWSLDetector(runner execraw.Runner, cfg settings.Store, log *slog.Logger) *WSLDetector {
	return &WSLDetector{
		runner: runner,
		mgr:    wsl.NewManager(runner, log),
		cfg:    cfg,
		log:    log.With("component", "detect", "platform", PlatformWindows, "mode", ModeWSL),
	}
}

// Detect implements Detector.
func (d *WSLDetector) Detect(ctx context.Context) *Result {
	distros, err := d.mgr.ListDistributions(ctx)
	if err != nil {
		var detErr detecterr.DetectError
		if !errors.As(err, &detErr) {
			detErr = &detecterr.SubsystemUnavailableError{Subsystem: "wsl", Detail: err.Error()}
		}

		result := failure(PlatformWindows, ModeWSL, detErr, wslSuggestions)
		d.remember(result)

		return result
	}

	if len(distros) == 0 {
		result := failure(PlatformWindows, ModeWSL, &detecterr.SubsystemUnavailableError{
			Subsystem:   "wsl",
			Detail:      "no distributions installed",
			Suggestions: []string{"Install one: wsl --install -d Ubuntu"},
		}, wslSuggestions)
		d.remember(result)

		return result
	}

	var tried []string

	for _, distro := range orderDistributions(distros, d.cfg.PreferredDistribution()) {
		result, probeNames := runPipeline(ctx, d.log.With("distribution", distro.Name), d.probes(distro.Name))

		for _, n := range probeNames {
			tried = append(tried, distro.Name+"/"+n)
		}

		if result != nil {
			d.remember(result)

			return result
		}
	}

	result := failure(PlatformWindows, ModeWSL, &detecterr.NotFoundError{
		Searched:    tried,
		Suggestions: wslSuggestions,
	}, wslSuggestions)
	d.remember(result)

	return result
}

// orderDistributions sorts the probing order: the pinned distribution
// first when set, then the default, then the rest as listed.
func orderDistributions(distros []wsl.Distribution, preferred string) []wsl.Distribution {
	ordered := make([]wsl.Distribution, 0, len(distros))

	for _, d := range distros {
		if preferred != "" && d.Name == preferred {
			ordered = append(ordered, d)
		}
	}

	for _, d := range distros {
		if d.IsDefault && d.Name != preferred {
			ordered = append(ordered, d)
		}
	}

	for _, d := range distros {
		if d.Name != preferred && !d.IsDefault {
			ordered = append(ordered, d)
		}
	}

	return ordered
}

func (d *WSLDetector) probes(distribution string) []probe {
	return []probe{
		{name: MethodShell, run: func(ctx context.Context) *Result {
			return d.probeShell(ctx, distribution)
		}},
		{name: "filesystem-search", run: func(ctx context.Context) *Result {
			return d.probeFilesystem(ctx, distribution)
		}},
		{name: MethodUserConfigured, run: func(ctx context.Context) *Result {
			return d.probeUserConfigured(ctx, distribution)
		}},
	}
}

// probeUserConfigured checks a configured override path inside the
// distribution. Only Linux-side absolute paths are meaningful here.
func (d *WSLDetector) probeUserConfigured(ctx context.Context, distribution string) *Result {
	path := d.cfg.CLIPath()
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil
	}

	version, variantName, ok := d.verifyIn(ctx, distribution, path)
	if !ok {
		return nil
	}

	return d.success(distribution, path, version, MethodUserConfigured, variantName)
}

// probeShell resolves each candidate through the invocation variant ladder,
// so version manager shims that only exist after shell init still resolve.
func (d *WSLDetector) probeShell(ctx context.Context, distribution string) *Result {
	for _, name := range candidateNames {
		res, variantName, err := d.mgr.RunInVariant(ctx, distribution, "command -v "+name, execraw.Options{
			Encoding: execraw.EncodingAuto,
		})
		if err != nil || !res.Success() {
			continue
		}

		path := firstLine(res.Stdout)
		if path == "" {
			continue
		}

		version, _, ok := d.verifyIn(ctx, distribution, path)
		if !ok {
			continue
		}

		return d.success(distribution, path, version, MethodWSL, variantName)
	}

	return nil
}

// probeFilesystem scans well-known install directories when PATH-based
// resolution finds nothing, covering broken shell init files.
func (d *WSLDetector) probeFilesystem(ctx context.Context, distribution string) *Result {
	globs := make([]string, 0, len(searchRoots)*len(candidateNames))
	for _, root := range searchRoots {
		for _, name := range candidateNames {
			globs = append(globs, root+"/"+name)
		}
	}

	command := "ls -1 " + strings.Join(globs, " ") + " 2>/dev/null | head -1"

	res, err := d.mgr.RunIn(ctx, distribution, command, execraw.Options{
		Encoding: execraw.EncodingAuto,
	})
	if err != nil || !res.Success() {
		return nil
	}

	path := firstLine(res.Stdout)
	if path == "" {
		return nil
	}

	version, variantName, ok := d.verifyIn(ctx, distribution, path)
	if !ok {
		return nil
	}

	return d.success(distribution, path, version, MethodWSL, variantName)
}

func (d *WSLDetector) success(distribution, path, version, method, variantName string) *Result {
	r := &Result{
		Success:      true,
		Platform:     PlatformWindows,
		Mode:         ModeWSL,
		CLIPath:      path,
		Version:      version,
		Method:       method,
		Distribution: distribution,
	}

	r.setMeta(MetaVariant, variantName)
	r.setMeta(MetaEnvironment, "wsl:"+distribution)

	if manager, nodeVersion := provenance(path); manager != "" {
		r.setMeta(MetaPackageManager, manager)
		r.setMeta(MetaNodeVersion, nodeVersion)
	}

	return r
}

// verifyIn runs "<path> --version" inside the distribution through the
// variant ladder and reports the version plus the variant that worked.
func (d *WSLDetector) verifyIn(ctx context.Context, distribution, path string) (string, string, bool) {
	res, variantName, err := d.mgr.RunInVariant(ctx, distribution,
		execraw.ShellQuote(path)+" --version", execraw.Options{
			Encoding: execraw.EncodingAuto,
		})
	if err != nil || !res.Success() {
		return "", "", false
	}

	version := parseVersion(res.Stdout)

	return version, variantName, version != ""
}

// Verify implements Detector. Without a prior detection there is no
// distribution to verify against, so it reports false.
func (d *WSLDetector) Verify(ctx context.Context, path string) bool {
	r, err := d.current()
	if err != nil {
		return false
	}

	_, _, ok := d.verifyIn(ctx, r.Distribution, path)

	return ok
}

// Execute implements Detector. A Windows-side working directory is
// translated to its /mnt equivalent before the CLI runs.
func (d *WSLDetector) Execute(
	ctx context.Context,
	args []string,
	workingDir string,
	opts execraw.Options,
) (*execraw.Result, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	command, err := d.buildCommand(r.CLIPath, args, workingDir)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = execraw.CLITimeout
	}

	opts.Encoding = execraw.EncodingAuto

	return d.mgr.RunIn(ctx, r.Distribution, command, opts)
}

// buildCommand assembles the in-distribution command line, cd-ing into the
// translated working directory first when one is given.
func (d *WSLDetector) buildCommand(cliPath string, args []string, workingDir string) (string, error) {
	command := execraw.ShellJoin(cliPath, args)

	if workingDir == "" {
		return command, nil
	}

	dir := workingDir
	if winpath.DetectKind(dir) == winpath.KindWindows {
		translated, err := winpath.WindowsToWSL(dir)
		if err != nil {
			return "", fmt.Errorf("translate working directory: %w", err)
		}

		dir = translated
	}

	return "cd " + execraw.ShellQuote(dir) + " && " + command, nil
}

// StartSession implements Detector. The session process is wsl.exe itself;
// killing its tree tears down the in-distribution CLI with it.
func (d *WSLDetector) StartSession(
	ctx context.Context,
	workingDir string,
	args []string,
	consumer Consumer,
) (*Session, error) {
	r, err := d.current()
	if err != nil {
		return nil, err
	}

	command, err := d.buildCommand(r.CLIPath, args, workingDir)
	if err != nil {
		return nil, err
	}

	handle, err := d.runner.Spawn(ctx, "wsl.exe",
		[]string{"-d", r.Distribution, "--", "bash", "-lc", command}, execraw.Options{})
	if err != nil {
		return nil, &detecterr.ExecutionFailedError{Command: command, Err: err}
	}

	return newSession(d.log, handle, consumer, SessionOptions{}), nil
}

// IsAvailable implements Detector.
func (d *WSLDetector) IsAvailable(ctx context.Context) bool {
	if r, err := d.current(); err == nil && r.Success {
		return true
	}

	return d.mgr.IsAvailable(ctx)
}
