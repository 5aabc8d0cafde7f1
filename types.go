package claudetect

import (
	"github.com/zhsama/claudetect/internal/detect"
	"github.com/zhsama/claudetect/internal/execraw"
)

// Re-export detection types from the internal package.

// Result is the outcome of one detection attempt.
type Result = detect.Result

// ResultError is the structured failure carried by an unsuccessful Result.
type ResultError = detect.ResultError

// Platform identifies the host operating system of a detection.
type Platform = detect.Platform

// ExecutionMode says how CLI invocations must be wrapped.
type ExecutionMode = detect.ExecutionMode

// Detector is the platform detection contract. Manager owns one; the type
// is exported so tests can substitute a fake via Config.Detector.
type Detector = detect.Detector

// Session is a live interactive CLI process with streaming output.
type Session = detect.Session

// Consumer receives session output as it arrives.
type Consumer = detect.Consumer

// SessionOptions tunes session spawning.
type SessionOptions = detect.SessionOptions

// ExecOptions tunes one-shot CLI executions.
type ExecOptions = execraw.Options

// ExecResult is the terminal outcome of a one-shot execution.
type ExecResult = execraw.Result

// Host platforms.
const (
	PlatformDarwin  = detect.PlatformDarwin
	PlatformLinux   = detect.PlatformLinux
	PlatformWindows = detect.PlatformWindows
)

// Execution modes.
const (
	ModeNative = detect.ModeNative
	ModeWSL    = detect.ModeWSL
)

// Detection method names.
const (
	MethodShell          = detect.MethodShell
	MethodDirect         = detect.MethodDirect
	MethodWSL            = detect.MethodWSL
	MethodUserConfigured = detect.MethodUserConfigured
	MethodCache          = detect.MethodCache
)
