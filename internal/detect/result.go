package detect

import (
	"runtime"

	"github.com/zhsama/claudetect/internal/detecterr"
)

// Platform identifies the host operating system of a detection.
type Platform string

// Supported host platforms.
const (
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// CurrentPlatform maps runtime.GOOS to a Platform.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// ExecutionMode says how CLI invocations must be wrapped.
type ExecutionMode string

// Execution modes.
const (
	ModeNative ExecutionMode = "native"
	ModeWSL    ExecutionMode = "wsl"
)

// Detection method names recorded in Result.Method.
const (
	MethodShell          = "shell"
	MethodDirect         = "direct"
	MethodWSL            = "linux-subsystem"
	MethodUserConfigured = "user-configured"
	MethodCache          = "cache"

	// methodPackageManagerPrefix prefixes the manager name, e.g.
	// "package-manager:nvm".
	methodPackageManagerPrefix = "package-manager:"
)

// MethodPackageManager builds the detection method string for a version
// manager hit.
func MethodPackageManager(manager string) string {
	return methodPackageManagerPrefix + manager
}

// Metadata keys used in Result.Metadata.
const (
	MetaPackageManager = "packageManager"
	MetaNodeVersion    = "nodeVersion"
	MetaEnvironment    = "environment"
	MetaPathKind       = "pathKind"
	MetaVariant        = "invocationVariant"
)

// ResultError is the structured failure carried by an unsuccessful Result.
type ResultError struct {
	Kind    detecterr.Kind `json:"kind"`
	Message string         `json:"message"`
	Detail  string         `json:"detail,omitempty"`
}

// Result is the immutable outcome of one detection attempt.
//
// Invariants: Success implies CLIPath is set and was verified executable at
// detection time; Mode == ModeWSL implies Distribution is set.
type Result struct {
	Success  bool          `json:"success"`
	Platform Platform      `json:"platform"`
	Mode     ExecutionMode `json:"mode"`

	// CLIPath is the path or bare command name to invoke.
	CLIPath string `json:"cliPath,omitempty"`

	// ResolvedPath is the realpath after symlink resolution, set when it
	// differs from CLIPath.
	ResolvedPath string `json:"resolvedPath,omitempty"`

	Version string `json:"version,omitempty"`

	// Method names the probing step that succeeded.
	Method string `json:"method,omitempty"`

	// Distribution is the WSL distribution hosting the CLI when Mode is
	// ModeWSL.
	Distribution string `json:"distribution,omitempty"`

	// Metadata captures provenance detail: owning version manager, node
	// runtime version, human-readable environment description.
	Metadata map[string]string `json:"metadata,omitempty"`

	Error       *ResultError `json:"error,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// BestPath returns ResolvedPath when set, CLIPath otherwise.
func (r *Result) BestPath() string {
	if r.ResolvedPath != "" {
		return r.ResolvedPath
	}

	return r.CLIPath
}

// setMeta lazily initializes the metadata map.
func (r *Result) setMeta(key, value string) {
	if value == "" {
		return
	}

	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}

	r.Metadata[key] = value
}

// failure builds an unsuccessful Result from a DetectError.
func failure(platform Platform, mode ExecutionMode, err detecterr.DetectError, suggestions []string) *Result {
	return &Result{
		Platform: platform,
		Mode:     mode,
		Error: &ResultError{
			Kind:    err.Kind(),
			Message: err.Error(),
		},
		Suggestions: suggestions,
	}
}
