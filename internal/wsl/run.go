package wsl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhsama/claudetect/internal/execraw"
)

// nvmActivation sources nvm before the command so shimmed binaries resolve
// for non-interactive shells.
const nvmActivation = `export NVM_DIR="$HOME/.nvm"; [ -s "$NVM_DIR/nvm.sh" ] && . "$NVM_DIR/nvm.sh"; `

// variant is one way of phrasing the same logical command inside a
// distribution. The same command can fail for subtly different reasons
// (missing interactive shell init, missing version-manager shim), so RunIn
// walks an ordered ladder and returns the first phrasing that succeeds.
type variant struct {
	name string
	args []string
}

// invocationVariants builds the ladder for one command, cheapest first.
func invocationVariants(distribution, command string) []variant {
	return []variant{
		{
			name: "direct",
			args: []string{"-d", distribution, "--", "sh", "-c", command},
		},
		{
			name: "login-shell",
			args: []string{"-d", distribution, "--", "bash", "-lc", command},
		},
		{
			name: "login-shell-profile",
			args: []string{"-d", distribution, "--", "bash", "-lc",
				". ~/.profile 2>/dev/null; " + command},
		},
		{
			name: "nvm",
			args: []string{"-d", distribution, "--", "bash", "-lc",
				nvmActivation + command},
		},
	}
}

// RunIn executes command inside the named distribution, trying each
// invocation variant in order. The first variant that exits zero wins; if
// none do, the last result is returned so the caller sees real exit code and
// stderr. The error return is reserved for wsl.exe itself being unrunnable.
func (m *Manager) RunIn(
	ctx context.Context,
	distribution string,
	command string,
	opts execraw.Options,
) (*execraw.Result, error) {
	result, _, err := m.RunInVariant(ctx, distribution, command, opts)

	return result, err
}

// RunInVariant is like RunIn but reports which variant succeeded, for
// detection provenance.
func (m *Manager) RunInVariant(
	ctx context.Context,
	distribution string,
	command string,
	opts execraw.Options,
) (*execraw.Result, string, error) {
	var last *execraw.Result

	lastName := ""

	for _, v := range invocationVariants(distribution, command) {
		result, err := m.runner.Run(ctx, m.exe, v.args, opts)
		if err != nil {
			return nil, "", fmt.Errorf("wsl run (%s) in %s: %w", v.name, distribution, err)
		}

		m.log.Debug("wsl command variant",
			slog.String("distribution", distribution),
			slog.String("variant", v.name),
			slog.Int("exit_code", result.ExitCode),
		)

		if result.Success() {
			return result, v.name, nil
		}

		last = result
		lastName = v.name
	}

	return last, lastName, nil
}
