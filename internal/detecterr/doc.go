// Package detecterr defines error types for CLI detection and invocation.
//
// This package provides structured error types covering the failure taxonomy
// of the detection pipeline: the CLI was not found, the hosting subsystem
// (WSL or Git Bash) is itself absent, a probing command failed unexpectedly,
// permission was denied, or the caller supplied invalid configuration. All
// error types support unwrapping and can be checked with errors.Is and
// errors.As.
package detecterr
