package gitbash

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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
	cmd := name + " " + strings.Join(args, " ")
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

func newTestLocator(runner *fakeRunner) *Locator {
	l := NewLocator(runner, testLogger())
	l.lookPath = func(string) (string, error) { return "", errors.New("not on PATH") }
	l.fileExists = func(string) bool { return false }

	return l
}

func TestLocate_PathLookupWins(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "--version", result: &execraw.Result{
			ExitCode: 0,
			Stdout:   "GNU bash, version 5.2.26(1)-release (x86_64-pc-msys)\n",
		}},
	}}
	l := newTestLocator(runner)
	l.lookPath = func(name string) (string, error) {
		require.Equal(t, "bash.exe", name)

		return `C:\Program Files\Git\bin\bash.exe`, nil
	}

	info := l.Locate(context.Background())

	require.True(t, info.Available)
	require.Equal(t, `C:\Program Files\Git\bin\bash.exe`, info.BashPath)
	require.Equal(t, "5.2.26", info.Version)
}

func TestLocate_SkipsSystem32WSLLauncher(t *testing.T) {
	l := newTestLocator(&fakeRunner{})
	l.lookPath = func(string) (string, error) {
		return `C:\Windows\System32\bash.exe`, nil
	}

	info := l.Locate(context.Background())

	// The System32 bash.exe is the WSL launcher, not Git Bash.
	require.False(t, info.Available)
}

func TestLocate_FallsBackToWellKnownPaths(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "--version", result: &execraw.Result{ExitCode: 0, Stdout: "GNU bash, version 4.4.23(2)-release\n"}},
	}}
	l := newTestLocator(runner)
	l.fileExists = func(p string) bool {
		return p == `C:\Program Files\Git\bin\bash.exe`
	}

	info := l.Locate(context.Background())

	require.True(t, info.Available)
	require.Equal(t, `C:\Program Files\Git\bin\bash.exe`, info.BashPath)
}

func TestLocate_RegistryFallback(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "reg.exe query", result: &execraw.Result{
			ExitCode: 0,
			Stdout: "\r\nHKEY_LOCAL_MACHINE\\SOFTWARE\\GitForWindows\r\n" +
				"    InstallPath    REG_SZ    C:\\Custom Tools\\Git\r\n",
		}},
		{match: "--version", result: &execraw.Result{ExitCode: 0, Stdout: "GNU bash, version 5.1.16(1)-release\n"}},
	}}
	l := newTestLocator(runner)

	registryHit := `C:\Custom Tools\Git\bin\bash.exe`
	l.fileExists = func(p string) bool { return p == registryHit }

	info := l.Locate(context.Background())

	require.True(t, info.Available)
	require.Equal(t, registryHit, info.BashPath)
}

func TestLocate_Unavailable(t *testing.T) {
	info := newTestLocator(&fakeRunner{}).Locate(context.Background())

	require.False(t, info.Available)
	require.Empty(t, info.BashPath)
}

func TestRunCommand_WithoutShellFailsAsSubsystemUnavailable(t *testing.T) {
	l := newTestLocator(&fakeRunner{})

	_, err := l.RunCommand(context.Background(), "", "claude --version", execraw.Options{})

	var subErr *detecterr.SubsystemUnavailableError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "git-bash", subErr.Subsystem)
}

func TestSanitizePathList_DropsWSLMounts(t *testing.T) {
	entries := []string{
		`C:\Windows\System32`,
		`\\wsl$\Ubuntu\usr\bin`,
		`\\wsl.localhost\Debian\bin`,
		`/mnt/c/Users/dev/bin`,
		`C:\Users\dev\AppData\Local\lxss\rootfs\bin`,
		`C:\Program Files\nodejs`,
		``,
	}

	kept := SanitizePathList(entries)

	require.Equal(t, []string{
		`C:\Windows\System32`,
		`C:\Program Files\nodejs`,
	}, kept)
}

func TestSanitizedPath_PrependsGitTrees(t *testing.T) {
	got := SanitizedPath(`C:\Windows\System32;\\wsl$\Ubuntu\bin`, `C:\Git\bin\bash.exe`)

	parts := strings.Split(got, ";")
	require.Equal(t, `C:\Git\usr\bin`, parts[0])
	require.Equal(t, `C:\Git\bin`, parts[1])
	require.NotContains(t, got, `wsl$`)
}

func TestParseBashVersion(t *testing.T) {
	require.Equal(t, "5.2.26", parseBashVersion("GNU bash, version 5.2.26(1)-release"))
	require.Equal(t, "", parseBashVersion("no version here"))
}

func TestParseRegInstallPath(t *testing.T) {
	out := "\r\nHKEY_LOCAL_MACHINE\\SOFTWARE\\GitForWindows\r\n" +
		"    InstallPath    REG_SZ    C:\\Program Files\\Git\r\n\r\n"

	require.Equal(t, `C:\Program Files\Git`, parseRegInstallPath(out))
	require.Equal(t, "", parseRegInstallPath("garbage"))
}
