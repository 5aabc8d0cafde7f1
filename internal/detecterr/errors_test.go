package detecterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{
		Searched:    []string{"nvm", "which", "direct"},
		Suggestions: []string{"npm install -g @anthropic-ai/claude-code"},
	}

	require.Equal(t, "claude CLI not found (tried: nvm, which, direct)", err.Error())
	require.Equal(t, KindNotFound, err.Kind())
	require.NotEmpty(t, err.Suggestions)
}

func TestSubsystemUnavailableError(t *testing.T) {
	err := &SubsystemUnavailableError{Subsystem: "wsl", Detail: "wsl.exe not on PATH"}

	require.Equal(t, "wsl unavailable: wsl.exe not on PATH", err.Error())
	require.Equal(t, KindSubsystemUnavailable, err.Kind())

	bare := &SubsystemUnavailableError{Subsystem: "git-bash"}
	require.Equal(t, "git-bash unavailable", bare.Error())
}

func TestPermissionDeniedError_Unwrap(t *testing.T) {
	root := errors.New("EACCES")
	err := &PermissionDeniedError{Path: "/usr/local/bin/claude", Err: root}

	require.ErrorIs(t, err, root)
	require.Equal(t, KindPermissionDenied, err.Kind())
}

func TestExecutionFailedError(t *testing.T) {
	root := errors.New("signal: killed")
	err := &ExecutionFailedError{Command: "claude --version", Stderr: "oom", Err: root}

	require.Equal(t, `command "claude --version" failed: signal: killed: oom`, err.Error())
	require.ErrorIs(t, err, root)
	require.Equal(t, KindExecutionFailed, err.Kind())
}

func TestInvalidConfigurationError(t *testing.T) {
	err := &InvalidConfigurationError{
		Field:  "workingDir",
		Value:  `\\server\share`,
		Reason: "UNC paths cannot be translated",
	}

	require.Equal(t, `invalid workingDir "\\server\share": UNC paths cannot be translated`, err.Error())
	require.Equal(t, KindInvalidConfiguration, err.Kind())
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNotFound, KindOf(&NotFoundError{}))
	require.Equal(t, KindExecutionFailed, KindOf(errors.New("plain")))

	// Wrapped DetectErrors are still classified.
	wrapped := fmt.Errorf("probe failed: %w", &SubsystemUnavailableError{Subsystem: "wsl"})
	require.Equal(t, KindSubsystemUnavailable, KindOf(wrapped))
}
