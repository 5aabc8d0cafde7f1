// Package detect implements the platform detectors that locate, verify, and
// invoke the Claude CLI.
//
// One detector exists per host situation: Unix-like native (macOS and
// Linux), Windows through Git Bash, and Windows through WSL. Each runs an
// ordered probing pipeline (explicit probe lists evaluated in sequence,
// first success wins) and produces a uniform Result. Every probing step
// failure means "try the next step"; only total pipeline exhaustion
// surfaces a structured not-found result carrying platform-specific
// installation suggestions.
package detect
