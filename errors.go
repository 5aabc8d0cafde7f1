package claudetect

import "github.com/zhsama/claudetect/internal/detecterr"

// Re-export error types from the internal package.

// DetectError is the marker interface implemented by all structured
// detection errors.
type DetectError = detecterr.DetectError

// Kind classifies a detection error.
type Kind = detecterr.Kind

// NotFoundError indicates every probing strategy was exhausted.
type NotFoundError = detecterr.NotFoundError

// SubsystemUnavailableError indicates WSL or Git Bash is missing or broken.
type SubsystemUnavailableError = detecterr.SubsystemUnavailableError

// PermissionDeniedError indicates a located binary is not executable.
type PermissionDeniedError = detecterr.PermissionDeniedError

// ExecutionFailedError indicates a CLI invocation failed to run.
type ExecutionFailedError = detecterr.ExecutionFailedError

// InvalidConfigurationError indicates a rejected setting or path.
type InvalidConfigurationError = detecterr.InvalidConfigurationError

// Error kinds.
const (
	KindNotFound             = detecterr.KindNotFound
	KindSubsystemUnavailable = detecterr.KindSubsystemUnavailable
	KindPermissionDenied     = detecterr.KindPermissionDenied
	KindExecutionFailed      = detecterr.KindExecutionFailed
	KindInvalidConfiguration = detecterr.KindInvalidConfiguration
)

// KindOf classifies err, defaulting to KindExecutionFailed for errors that
// are not structured detection errors.
func KindOf(err error) Kind {
	return detecterr.KindOf(err)
}

// Re-export sentinel errors from the internal package.
var (
	// ErrNotDetected indicates Execute or StartSession was called before a
	// successful Detect.
	ErrNotDetected = detecterr.ErrNotDetected

	// ErrSessionClosed indicates an operation on a finished session.
	ErrSessionClosed = detecterr.ErrSessionClosed

	// ErrNoHostEquivalent indicates a WSL-internal path with no Windows
	// translation.
	ErrNoHostEquivalent = detecterr.ErrNoHostEquivalent
)
