// Package gitbash locates a Git Bash installation on Windows and executes
// commands through it.
//
// Git Bash is the POSIX-emulation environment used when no WSL distribution
// hosts the CLI. Its PATH is built deliberately, excluding anything that
// looks like a WSL mount, so the two execution modes never resolve each
// other's binaries.
package gitbash

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
)

// Info is the outcome of locating Git Bash.
type Info struct {
	Available bool
	BashPath  string
	Version   string
}

// Locator finds the Git Bash shell binary.
type Locator struct {
	runner execraw.Runner
	log    *slog.Logger

	// lookPath and fileExists are swappable for tests.
	lookPath   func(string) (string, error)
	fileExists func(string) bool
}

// NewLocator creates a Locator with OS-backed lookups.
func NewLocator(runner execraw.Runner, log *slog.Logger) *Locator {
	return &Locator{
		runner:   runner,
		log:      log.With("component", "gitbash"),
		lookPath: exec.LookPath,
		fileExists: func(p string) bool {
			st, err := os.Stat(p)

			return err == nil && !st.IsDir()
		},
	}
}

// wellKnownBashPaths are the fixed install locations checked after PATH.
func wellKnownBashPaths() []string {
	paths := []string{
		`C:\Program Files\Git\bin\bash.exe`,
		`C:\Program Files (x86)\Git\bin\bash.exe`,
	}

	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, winJoin(local, "Programs", "Git", "bin", "bash.exe"))
	}

	if profile := os.Getenv("USERPROFILE"); profile != "" {
		paths = append(paths,
			winJoin(profile, "scoop", "apps", "git", "current", "bin", "bash.exe"),
		)
	}

	return append(paths, `C:\tools\git\bin\bash.exe`)
}

// Locate searches for Git Bash: PATH lookup, well-known install locations,
// then the Git for Windows registry key. Info.Available is false when all
// three fail; that is a normal outcome, not an error.
func (l *Locator) Locate(ctx context.Context) Info {
	if p, err := l.lookPath("bash.exe"); err == nil && !isWSLLauncher(p) {
		l.log.Debug("found bash on PATH", "path", p)

		return l.describe(ctx, p)
	}

	for _, p := range wellKnownBashPaths() {
		if l.fileExists(p) {
			l.log.Debug("found bash at well-known path", "path", p)

			return l.describe(ctx, p)
		}
	}

	if p := l.registryLookup(ctx); p != "" && l.fileExists(p) {
		l.log.Debug("found bash via registry", "path", p)

		return l.describe(ctx, p)
	}

	l.log.Debug("git bash not found")

	return Info{}
}

// describe fills in the shell version for a located binary.
func (l *Locator) describe(ctx context.Context, bashPath string) Info {
	info := Info{Available: true, BashPath: bashPath}

	result, err := l.runner.Run(ctx, bashPath, []string{"--version"}, execraw.Options{})
	if err == nil && result.Success() {
		info.Version = parseBashVersion(result.Stdout)
	}

	return info
}

// registryLookup asks the Git for Windows uninstall key for the install
// root. Failure at any step yields "".
func (l *Locator) registryLookup(ctx context.Context) string {
	result, err := l.runner.Run(ctx, "reg.exe", []string{
		"query", `HKLM\SOFTWARE\GitForWindows`, "/v", "InstallPath",
	}, execraw.Options{})
	if err != nil || !result.Success() {
		return ""
	}

	root := parseRegInstallPath(result.Stdout)
	if root == "" {
		return ""
	}

	return winJoin(root, "bin", "bash.exe")
}

// isWSLLauncher reports whether a bash.exe is the System32 WSL launcher
// rather than Git Bash.
func isWSLLauncher(p string) bool {
	return strings.Contains(strings.ToLower(toSlash(p)), "windows/system32")
}

var bashVersionRe = regexp.MustCompile(`version ([0-9]+\.[0-9]+\.[0-9]+)`)

// parseBashVersion extracts "5.2.26" from "GNU bash, version 5.2.26(1)-release".
func parseBashVersion(out string) string {
	m := bashVersionRe.FindStringSubmatch(out)
	if m == nil {
		return ""
	}

	return m[1]
}

// parseRegInstallPath extracts the REG_SZ value from reg.exe query output.
func parseRegInstallPath(out string) string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) >= 3 && fields[0] == "InstallPath" {
			// The value may itself contain spaces; rejoin everything after
			// the REG_SZ type column.
			return strings.Join(fields[2:], " ")
		}
	}

	return ""
}

// RunCommand executes a command line through the located shell
// non-interactively. The PATH handed to the shell is sanitized first.
func (l *Locator) RunCommand(
	ctx context.Context,
	bashPath string,
	command string,
	opts execraw.Options,
) (*execraw.Result, error) {
	if bashPath == "" {
		return nil, &detecterr.SubsystemUnavailableError{
			Subsystem:   "git-bash",
			Detail:      "no shell binary located",
			Suggestions: []string{"Install Git for Windows: https://gitforwindows.org"},
		}
	}

	if opts.Env == nil {
		opts.Env = map[string]string{}
	}

	if _, ok := opts.Env["PATH"]; !ok {
		opts.Env["PATH"] = SanitizedPath(os.Getenv("PATH"), bashPath)
	}

	result, err := l.runner.Run(ctx, bashPath, []string{"-c", command}, opts)
	if err != nil {
		return nil, fmt.Errorf("git bash run: %w", err)
	}

	return result, nil
}

// SanitizedPath rebuilds a PATH for Git Bash from base, dropping entries
// that resemble WSL mount points and prepending the Git usr/bin tree so the
// shell's own coreutils win.
func SanitizedPath(base string, bashPath string) string {
	entries := strings.Split(base, ";")
	kept := SanitizePathList(entries)

	gitRoot := winDir(winDir(bashPath)) // <root>\bin\bash.exe -> <root>
	prepend := []string{
		winJoin(gitRoot, "usr", "bin"),
		winJoin(gitRoot, "bin"),
	}

	return strings.Join(append(prepend, kept...), ";")
}

// SanitizePathList drops PATH entries that belong to the WSL world:
// \\wsl$ and \\wsl.localhost shares, /mnt/<drive> mounts, and the legacy
// lxss tree.
func SanitizePathList(entries []string) []string {
	kept := make([]string, 0, len(entries))

	for _, e := range entries {
		trimmed := strings.TrimSpace(e)
		if trimmed == "" {
			continue
		}

		lower := strings.ToLower(toSlash(trimmed))

		if strings.HasPrefix(lower, "//wsl$") ||
			strings.HasPrefix(lower, "//wsl.localhost") ||
			strings.HasPrefix(lower, "/mnt/") ||
			strings.Contains(lower, "/lxss/") {
			continue
		}

		kept = append(kept, trimmed)
	}

	return kept
}

// The helpers below manipulate Windows paths explicitly. path/filepath is
// not suitable: its separator is the host's, and detection code frequently
// runs the Windows branches under test on a POSIX host.

func winJoin(parts ...string) string {
	return strings.Join(parts, `\`)
}

func winDir(p string) string {
	i := strings.LastIndexAny(p, `\/`)
	if i < 0 {
		return p
	}

	return p[:i]
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
