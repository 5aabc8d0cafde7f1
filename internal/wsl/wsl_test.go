package wsl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
	textunicode "golang.org/x/text/encoding/unicode"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner answers Run calls by substring match on the joined command line.
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

func TestParseListing_PlainOutput(t *testing.T) {
	raw := "  NAME            STATE           VERSION\r\n" +
		"* Ubuntu-22.04    Running         2\r\n" +
		"  Debian          Stopped         2\r\n"

	distros := ParseListing(raw)

	require.Len(t, distros, 2)
	require.Equal(t, Distribution{
		Name: "Ubuntu-22.04", State: StateRunning, Version: "2", IsDefault: true,
	}, distros[0])
	require.Equal(t, Distribution{
		Name: "Debian", State: StateStopped, Version: "2",
	}, distros[1])
}

func TestParseListing_UTF16LEOutput(t *testing.T) {
	plain := "  NAME      STATE      VERSION\r\n* Ubuntu    Running    2\r\n  Alpine    Stopped    1\r\n"

	enc := textunicode.UTF16(textunicode.LittleEndian, textunicode.IgnoreBOM).NewEncoder()
	raw, err := enc.Bytes([]byte(plain))
	require.NoError(t, err)

	distros := ParseListing(string(raw))

	require.Len(t, distros, 2)
	require.Equal(t, "Ubuntu", distros[0].Name)
	require.True(t, distros[0].IsDefault)
	require.Equal(t, "Alpine", distros[1].Name)
	require.Equal(t, "1", distros[1].Version)
}

func TestParseListing_NamesContainNoControlCharacters(t *testing.T) {
	// Simulate half-transcoded output with embedded nulls.
	raw := "  NAME  STATE  VERSION\n\x00* Ubu\x00ntu  Run\x00ning  2\n"

	distros := ParseListing(raw)

	require.Len(t, distros, 1)
	require.Equal(t, "Ubuntu", distros[0].Name)

	for _, r := range distros[0].Name {
		require.False(t, unicode.IsControl(r), "control rune %q in name", r)
	}
}

func TestParseListing_SkipsUnparsableLines(t *testing.T) {
	raw := "  NAME  STATE  VERSION\n" +
		"garbage-line-without-state\n" +
		"  Ubuntu  Running  2\n" +
		"  Weird   Frobnicating  9\n"

	distros := ParseListing(raw)

	require.Len(t, distros, 1)
	require.Equal(t, "Ubuntu", distros[0].Name)
}

func TestParseListing_StateSynonyms(t *testing.T) {
	raw := "  NAME  STATE  VERSION\n" +
		"  A  running  2\n" +
		"  B  Installing  2\n"

	distros := ParseListing(raw)

	require.Len(t, distros, 2)
	require.Equal(t, StateRunning, distros[0].State)
	require.Equal(t, StateStopped, distros[1].State)
}

func TestListDistributions_UnavailableWhenExeMissing(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "wsl.exe", err: errors.New("exec: wsl.exe not found")},
	}}
	m := NewManager(runner, testLogger())

	_, err := m.ListDistributions(context.Background())

	require.Error(t, err)

	var subErr *detecterr.SubsystemUnavailableError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "wsl", subErr.Subsystem)
	require.NotEmpty(t, subErr.Suggestions)
}

func TestIsAvailable(t *testing.T) {
	available := NewManager(&fakeRunner{responses: []fakeResponse{
		{match: "--status", result: &execraw.Result{ExitCode: 0}},
	}}, testLogger())
	require.True(t, available.IsAvailable(context.Background()))

	missing := NewManager(&fakeRunner{responses: []fakeResponse{
		{match: "--status", err: errors.New("not found")},
	}}, testLogger())
	require.False(t, missing.IsAvailable(context.Background()))
}

func TestRunInVariant_FirstSuccessWins(t *testing.T) {
	// The direct sh -c variant fails, the login shell succeeds; the later
	// variants must not run.
	runner := &fakeRunner{responses: []fakeResponse{
		{match: `sh -c which claude`, result: &execraw.Result{ExitCode: 1}},
		{match: `bash -lc which claude`, result: &execraw.Result{ExitCode: 0, Stdout: "/home/u/.nvm/versions/node/v20.11.0/bin/claude\n"}},
	}}
	m := NewManager(runner, testLogger())

	result, variant, err := m.RunInVariant(context.Background(), "Ubuntu", "which claude", execraw.Options{})

	require.NoError(t, err)
	require.True(t, result.Success())
	require.Equal(t, "login-shell", variant)
	require.Len(t, runner.calls, 2)
	require.Contains(t, runner.calls[0], "-d Ubuntu")
}

func TestRunIn_ReturnsLastFailureWhenAllVariantsFail(t *testing.T) {
	runner := &fakeRunner{} // everything exits 127
	m := NewManager(runner, testLogger())

	result, err := m.RunIn(context.Background(), "Ubuntu", "which claude", execraw.Options{})

	require.NoError(t, err)
	require.False(t, result.Success())
	require.Equal(t, 127, result.ExitCode)
	require.Len(t, runner.calls, 4) // full ladder exhausted
}
