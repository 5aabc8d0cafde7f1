package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
	"github.com/zhsama/claudetect/internal/settings"
	"github.com/zhsama/claudetect/internal/wsl"
)

const twoDistroListing = "  NAME      STATE      VERSION\r\n" +
	"* Ubuntu    Running    2\r\n" +
	"  Debian    Stopped    2\r\n"

// The CLI lives only in the second distribution; detection must keep
// probing past the default one and remember the winner.
func TestWSLDetector_SecondDistributionWins(t *testing.T) {
	shim := "/home/u/.nvm/versions/node/v18.17.0/bin/claude"

	runner := &fakeRunner{responses: []fakeResponse{
		{match: "wsl.exe -l -v", result: ok(twoDistroListing)},
		{match: "-d Debian -- sh -c command -v claude", result: ok(shim + "\n")},
		{match: "-d Debian -- sh -c " + shim + " --version", result: ok("1.0.50 (Claude Code)\n")},
	}}

	d := NewWSLDetector(runner, &settings.Static{}, testLogger())
	result := d.Detect(context.Background())

	require.True(t, result.Success)
	require.Equal(t, ModeWSL, result.Mode)
	require.Equal(t, "Debian", result.Distribution)
	require.Equal(t, shim, result.CLIPath)
	require.Equal(t, "1.0.50", result.Version)
	require.Equal(t, MethodWSL, result.Method)
	require.Equal(t, "direct", result.Metadata[MetaVariant])
	require.Equal(t, "nvm", result.Metadata[MetaPackageManager])
	require.Equal(t, "v18.17.0", result.Metadata[MetaNodeVersion])
}

// Execute must retarget the remembered distribution and translate a
// Windows-side working directory into its /mnt equivalent.
func TestWSLDetector_ExecuteRetargetsDistribution(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "wsl.exe -l -v", result: ok(twoDistroListing)},
		{match: "-d Debian -- sh -c command -v claude", result: ok("/usr/local/bin/claude\n")},
		{match: "--version", result: ok("1.2.3\n")},
		{match: "cd /mnt/c/projects/app", result: ok("done\n")},
	}}

	d := NewWSLDetector(runner, &settings.Static{}, testLogger())
	require.True(t, d.Detect(context.Background()).Success)

	res, err := d.Execute(context.Background(), []string{"--print", "hi"}, `C:\projects\app`, execraw.Options{})
	require.NoError(t, err)
	require.True(t, res.Success())

	last := runner.calls[len(runner.calls)-1]
	require.Contains(t, last, "-d Debian")
	require.Contains(t, last, "cd /mnt/c/projects/app && /usr/local/bin/claude --print hi")
}

func TestWSLDetector_SubsystemUnavailable(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "wsl.exe -l -v", result: &execraw.Result{ExitCode: 1, Stderr: "not installed"}},
	}}

	d := NewWSLDetector(runner, &settings.Static{}, testLogger())
	result := d.Detect(context.Background())

	require.False(t, result.Success)
	require.Equal(t, detecterr.KindSubsystemUnavailable, result.Error.Kind)
}

func TestWSLDetector_NotFoundAcrossDistributions(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "wsl.exe -l -v", result: ok(twoDistroListing)},
	}}

	d := NewWSLDetector(runner, &settings.Static{}, testLogger())
	result := d.Detect(context.Background())

	require.False(t, result.Success)
	require.Equal(t, detecterr.KindNotFound, result.Error.Kind)
	// Both distributions were searched.
	require.Contains(t, result.Error.Message, "Ubuntu/")
	require.Contains(t, result.Error.Message, "Debian/")
}

func TestOrderDistributions(t *testing.T) {
	distros := []wsl.Distribution{
		{Name: "Ubuntu", IsDefault: true},
		{Name: "Debian"},
		{Name: "Alpine"},
	}

	names := func(ds []wsl.Distribution) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.Name
		}

		return out
	}

	require.Equal(t, []string{"Ubuntu", "Debian", "Alpine"},
		names(orderDistributions(distros, "")))
	require.Equal(t, []string{"Alpine", "Ubuntu", "Debian"},
		names(orderDistributions(distros, "Alpine")))
}

func TestWSLDetector_BuildCommandRejectsUNCWorkingDir(t *testing.T) {
	d := NewWSLDetector(&fakeRunner{}, &settings.Static{}, testLogger())

	_, err := d.buildCommand("/usr/bin/claude", nil, `\\server\share\proj`)
	require.Error(t, err)

	cmd, err := d.buildCommand("/usr/bin/claude", []string{"doctor"}, "/home/u/proj")
	require.NoError(t, err)
	require.Equal(t, "cd /home/u/proj && /usr/bin/claude doctor", cmd)
}
