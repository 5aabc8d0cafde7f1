// Package settings reads the user-facing configuration that influences
// detection: a CLI override path and WSL preferences.
//
// Values come from a viper instance owned by the embedding application, so
// the same keys resolve from a config file, environment variables
// (CLAUDETECT_CLI_PATH and friends), or flags. An override path is a hint,
// not a fact: detectors re-verify it before trusting it.
package settings

import (
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyCLIPath         = "cli.path"
	KeyPreferWSL       = "wsl.prefer"
	KeyWSLDistribution = "wsl.distribution"
	KeyCacheDisabled   = "cache.disabled"

	envPrefix = "claudetect"
)

// Store exposes the detection-relevant settings.
type Store interface {
	// CLIPath is the user-configured absolute override path, or "".
	CLIPath() string

	// PreferWSL selects the WSL detector over Git Bash on Windows.
	PreferWSL() bool

	// PreferredDistribution pins detection to one WSL distribution, or "".
	PreferredDistribution() string

	// CacheDisabled turns off the on-disk result cache.
	CacheDisabled() bool
}

// ViperStore reads settings from a viper instance.
type ViperStore struct {
	v *viper.Viper
}

// Compile-time verification that ViperStore implements Store.
var _ Store = (*ViperStore)(nil)

// NewViperStore wraps v, binding the CLAUDETECT_* environment variables.
// Pass nil to use a fresh instance (environment-only configuration).
func NewViperStore(v *viper.Viper) *ViperStore {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ViperStore{v: v}
}

// CLIPath implements Store.
func (s *ViperStore) CLIPath() string {
	return strings.TrimSpace(s.v.GetString(KeyCLIPath))
}

// PreferWSL implements Store.
func (s *ViperStore) PreferWSL() bool {
	return s.v.GetBool(KeyPreferWSL)
}

// PreferredDistribution implements Store.
func (s *ViperStore) PreferredDistribution() string {
	return strings.TrimSpace(s.v.GetString(KeyWSLDistribution))
}

// CacheDisabled implements Store.
func (s *ViperStore) CacheDisabled() bool {
	return s.v.GetBool(KeyCacheDisabled)
}

// Static is a fixed-value Store for tests and embedding applications that
// manage configuration themselves.
type Static struct {
	Path         string
	WSL          bool
	Distribution string
	NoCache      bool
}

// Compile-time verification that Static implements Store.
var _ Store = (*Static)(nil)

// CLIPath implements Store.
func (s *Static) CLIPath() string { return s.Path }

// PreferWSL implements Store.
func (s *Static) PreferWSL() bool { return s.WSL }

// PreferredDistribution implements Store.
func (s *Static) PreferredDistribution() string { return s.Distribution }

// CacheDisabled implements Store.
func (s *Static) CacheDisabled() bool { return s.NoCache }
