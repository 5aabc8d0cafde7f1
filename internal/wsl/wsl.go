// Package wsl enumerates Windows Subsystem for Linux distributions and runs
// commands inside them.
//
// wsl.exe emits its listing in UTF-16LE on many host locales, so the parser
// transcodes null-byte-heavy output before line-splitting. Transcoding is a
// best-effort normalization layer: a line that still fails to parse is
// skipped, never fatal.
package wsl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
	"github.com/zhsama/claudetect/internal/execraw"
)

// State is the lifecycle state of a distribution as reported by wsl.exe.
type State string

// Distribution states.
const (
	StateRunning State = "Running"
	StateStopped State = "Stopped"
)

// Distribution is one installed WSL distribution. Discovered, never created.
type Distribution struct {
	Name      string
	Version   string
	State     State
	IsDefault bool
}

// Manager lists distributions and executes commands inside them.
type Manager struct {
	runner execraw.Runner
	log    *slog.Logger

	// exe is the subsystem manager binary, overridable in tests.
	exe string
}

// NewManager creates a Manager backed by wsl.exe.
func NewManager(runner execraw.Runner, log *slog.Logger) *Manager {
	return &Manager{
		runner: runner,
		log:    log.With("component", "wsl"),
		exe:    "wsl.exe",
	}
}

// IsAvailable reports whether the WSL subsystem is installed and responding.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	result, err := m.runner.Run(ctx, m.exe, []string{"--status"}, execraw.Options{})
	if err != nil {
		m.log.Debug("wsl.exe not runnable", "error", err)

		return false
	}

	return result.Success()
}

// ListDistributions parses `wsl.exe -l -v`. Returns SubsystemUnavailableError
// when wsl.exe itself cannot run.
func (m *Manager) ListDistributions(ctx context.Context) ([]Distribution, error) {
	result, err := m.runner.Run(ctx, m.exe, []string{"-l", "-v"}, execraw.Options{})
	if err != nil {
		return nil, &detecterr.SubsystemUnavailableError{
			Subsystem: "wsl",
			Detail:    err.Error(),
			Suggestions: []string{
				"Install WSL: wsl --install",
				"Enable the 'Windows Subsystem for Linux' optional feature",
			},
		}
	}

	if !result.Success() {
		return nil, &detecterr.SubsystemUnavailableError{
			Subsystem:   "wsl",
			Detail:      fmt.Sprintf("wsl.exe -l -v exited %d", result.ExitCode),
			Suggestions: []string{"Install a distribution: wsl --install -d Ubuntu"},
		}
	}

	distros := ParseListing(result.Stdout)
	m.log.Debug("listed distributions", "count", len(distros))

	return distros, nil
}

// ParseListing parses the raw `wsl -l -v` output. The input may carry
// UTF-16LE bytes; it is transcoded, CRLF-normalized, header-skipped, and
// unparsable lines are dropped.
func ParseListing(raw string) []Distribution {
	text := execraw.DecodeOutput([]byte(raw), execraw.EncodingAuto)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var distros []Distribution

	for _, line := range strings.Split(text, "\n") {
		line = stripControl(line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Header row: "  NAME  STATE  VERSION" (localized on some hosts).
		if isHeaderLine(trimmed) {
			continue
		}

		d, ok := parseLine(trimmed)
		if !ok {
			continue
		}

		distros = append(distros, d)
	}

	return distros
}

// isHeaderLine matches the column header in the locales we have seen.
func isHeaderLine(line string) bool {
	upper := strings.ToUpper(line)

	return strings.Contains(upper, "NAME") && strings.Contains(upper, "STATE")
}

// parseLine parses one listing row: "* Ubuntu-22.04  Running  2".
func parseLine(line string) (Distribution, bool) {
	var d Distribution

	if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "->") {
		d.IsDefault = true
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "*"), "->"))
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Distribution{}, false
	}

	d.Name = fields[0]

	state, ok := normalizeState(fields[1])
	if !ok {
		return Distribution{}, false
	}

	d.State = state

	if len(fields) >= 3 {
		d.Version = fields[2]
	}

	return d, true
}

// normalizeState tolerates the synonyms wsl.exe uses across versions and
// locales.
func normalizeState(s string) (State, bool) {
	switch strings.ToLower(s) {
	case "running", "正在运行":
		return StateRunning, true
	case "stopped", "installing", "已停止":
		return StateStopped, true
	default:
		return "", false
	}
}

// stripControl removes nulls and other control characters that survive a
// partial transcoding.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}

		if r < 0x20 || r == 0x7F || r == 0xFEFF {
			return -1
		}

		return r
	}, s)
}
