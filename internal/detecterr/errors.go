package detecterr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a detection failure for callers that switch on the
// category rather than the concrete type.
type Kind string

// Failure categories. SubsystemUnavailable is deliberately distinct from
// NotFound: "WSL is not installed" and "the CLI is not installed inside an
// available WSL" call for different remediations.
const (
	KindNotFound             Kind = "not_found"
	KindSubsystemUnavailable Kind = "subsystem_unavailable"
	KindPermissionDenied     Kind = "permission_denied"
	KindExecutionFailed      Kind = "execution_failed"
	KindInvalidConfiguration Kind = "invalid_configuration"
)

// DetectError is the base interface for all detection errors.
type DetectError interface {
	error
	Kind() Kind
}

// Compile-time verification that all error types implement DetectError.
var (
	_ DetectError = (*NotFoundError)(nil)
	_ DetectError = (*SubsystemUnavailableError)(nil)
	_ DetectError = (*PermissionDeniedError)(nil)
	_ DetectError = (*ExecutionFailedError)(nil)
	_ DetectError = (*InvalidConfigurationError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotDetected indicates Execute or StartSession was called before a
	// successful Detect. This is a programming error on the caller's side;
	// the manager never runs a lazy detection on its behalf.
	ErrNotDetected = errors.New("claude CLI not detected: call Detect before Execute or StartSession")

	// ErrSessionClosed indicates an operation on an already-terminated
	// interactive session.
	ErrSessionClosed = errors.New("session closed")

	// ErrNoHostEquivalent indicates a WSL-internal path (outside /mnt) has
	// no Windows-side equivalent.
	ErrNoHostEquivalent = errors.New("path has no Windows equivalent outside /mnt")
)

// NotFoundError indicates no working CLI install was located after the full
// probing pipeline was exhausted.
type NotFoundError struct {
	// Searched lists the probing steps that were attempted, in order.
	Searched []string
	// Suggestions are platform-specific installation hints, never empty.
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("claude CLI not found (tried: %s)", strings.Join(e.Searched, ", "))
}

// Kind implements DetectError.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// SubsystemUnavailableError indicates the execution environment that would
// host the CLI (WSL or Git Bash) is itself absent or broken.
type SubsystemUnavailableError struct {
	// Subsystem names the missing environment, e.g. "wsl" or "git-bash".
	Subsystem   string
	Detail      string
	Suggestions []string
}

func (e *SubsystemUnavailableError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s unavailable: %s", e.Subsystem, e.Detail)
	}

	return fmt.Sprintf("%s unavailable", e.Subsystem)
}

// Kind implements DetectError.
func (e *SubsystemUnavailableError) Kind() Kind { return KindSubsystemUnavailable }

// PermissionDeniedError indicates a located binary could not be verified or
// executed due to filesystem permissions.
type PermissionDeniedError struct {
	Path string
	Err  error
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s: %v", e.Path, e.Err)
}

func (e *PermissionDeniedError) Unwrap() error { return e.Err }

// Kind implements DetectError.
func (e *PermissionDeniedError) Kind() Kind { return KindPermissionDenied }

// ExecutionFailedError indicates a probing or invocation command errored
// unexpectedly (failed to spawn, timed out, or was killed by a signal).
// A normal non-zero exit is not an ExecutionFailedError.
type ExecutionFailedError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExecutionFailedError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q failed: %v: %s", e.Command, e.Err, e.Stderr)
	}

	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *ExecutionFailedError) Unwrap() error { return e.Err }

// Kind implements DetectError.
func (e *ExecutionFailedError) Kind() Kind { return KindExecutionFailed }

// InvalidConfigurationError indicates a malformed user-supplied value: an
// override path that does not exist, a working directory in the wrong path
// format, or an untranslatable path.
type InvalidConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Kind implements DetectError.
func (e *InvalidConfigurationError) Kind() Kind { return KindInvalidConfiguration }

// KindOf extracts the failure category from err, or KindExecutionFailed if
// err is not a DetectError.
func KindOf(err error) Kind {
	var de DetectError
	if errors.As(err, &de) {
		return de.Kind()
	}

	return KindExecutionFailed
}
