// Package execraw is the low-level command execution primitive used by the
// detection pipeline.
//
// It runs one-shot commands with timeout, working directory, environment
// overrides, optional login-shell wrapping, and optional output transcoding,
// and it spawns long-lived processes for interactive sessions. A non-zero
// exit is a normal Result, never a Go error; only failure to start the
// process at all is reported as an error.
package execraw
