package claudetect

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/zhsama/claudetect/internal/cache"
	"github.com/zhsama/claudetect/internal/detect"
	"github.com/zhsama/claudetect/internal/execraw"
	"github.com/zhsama/claudetect/internal/settings"
)

// ResultCache stores detection results across process restarts.
type ResultCache interface {
	// Get returns the cached result for platform, or nil when absent,
	// expired, or unreadable.
	Get(platform Platform) *Result

	// Put stores a result. Write failures are swallowed: the cache is an
	// optimization, not a source of truth.
	Put(result *Result)

	// Clear removes the stored result.
	Clear()
}

// Config assembles a Manager. The zero value is usable: environment-backed
// settings, the default on-disk cache, a silent logger, and the platform
// detector matching runtime.GOOS.
type Config struct {
	// Logger receives structured detection logs. Nil means silent.
	Logger *slog.Logger

	// Settings supplies the user override path and WSL preferences. Nil
	// means environment variables only (CLAUDETECT_*).
	Settings settings.Store

	// Cache overrides the default on-disk result cache. Ignored when the
	// settings disable caching.
	Cache ResultCache

	// Runner overrides command execution, for tests.
	Runner execraw.Runner

	// Detector overrides platform selection, for tests.
	Detector Detector
}

// Manager is the public entry point: it owns exactly one platform detector,
// chosen at construction and never switched, plus the result cache.
//
// All methods are safe for concurrent use.
type Manager struct {
	log      *slog.Logger
	cfg      settings.Store
	cache    ResultCache
	detector Detector

	mu   sync.Mutex
	last *Result
}

// NewManager builds a Manager from cfg.
func NewManager(cfg Config) (*Manager, error) {
	log := cfg.Logger
	if log == nil {
		log = NopLogger()
	}

	store := cfg.Settings
	if store == nil {
		store = settings.NewViperStore(nil)
	}

	rc := cfg.Cache
	if rc == nil && !store.CacheDisabled() {
		fc, err := cache.New(log)
		if err != nil {
			// No cache directory is a degraded mode, not a failure.
			log.Warn("result cache unavailable", "error", err)
		} else {
			rc = fc
		}
	}

	if store.CacheDisabled() {
		rc = nil
	}

	detector := cfg.Detector
	if detector == nil {
		runner := cfg.Runner
		if runner == nil {
			runner = execraw.NewOSRunner(log)
		}

		detector = selectDetector(runner, store, log)
	}

	return &Manager{
		log:      log.With("component", "manager"),
		cfg:      store,
		cache:    rc,
		detector: detector,
	}, nil
}

// selectDetector picks the platform detector: WSL when preferred on
// Windows, Git Bash otherwise, and the Unix detector everywhere else.
func selectDetector(runner execraw.Runner, store settings.Store, log *slog.Logger) Detector {
	if runtime.GOOS == "windows" {
		if store.PreferWSL() {
			return detect.NewWSLDetector(runner, store, log)
		}

		return detect.NewGitBashDetector(runner, store, log)
	}

	return detect.NewUnixDetector(runner, store, log)
}

// Detect locates the CLI. A fresh-enough cached result short-circuits the
// probing pipeline and is reported with method "cache"; the underlying
// provenance survives in the result's other fields.
func (m *Manager) Detect(ctx context.Context) *Result {
	if m.cache != nil {
		if cached := m.cache.Get(detect.CurrentPlatform()); cached != nil {
			m.log.Debug("detection served from cache",
				"cli_path", cached.CLIPath, "original_method", cached.Method)

			restored := *cached
			restored.Method = MethodCache

			// The detector must trust the restored result so Execute and
			// StartSession work without a fresh probe.
			m.detector.Adopt(&restored)
			m.remember(&restored)

			return &restored
		}
	}

	return m.detectFresh(ctx)
}

// Redetect bypasses and replaces any cached result.
func (m *Manager) Redetect(ctx context.Context) *Result {
	if m.cache != nil {
		m.cache.Clear()
	}

	return m.detectFresh(ctx)
}

func (m *Manager) detectFresh(ctx context.Context) *Result {
	result := m.detector.Detect(ctx)
	m.remember(result)

	if m.cache != nil {
		m.cache.Put(result)
	}

	return result
}

func (m *Manager) remember(r *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = r
}

// Execute runs the detected CLI to completion. It fails with ErrNotDetected
// before a successful Detect.
func (m *Manager) Execute(
	ctx context.Context,
	args []string,
	workingDir string,
	opts ExecOptions,
) (*ExecResult, error) {
	return m.detector.Execute(ctx, args, workingDir, opts)
}

// StartSession spawns a long-lived interactive CLI process. It fails with
// ErrNotDetected before a successful Detect.
func (m *Manager) StartSession(
	ctx context.Context,
	workingDir string,
	args []string,
	consumer Consumer,
) (*Session, error) {
	return m.detector.StartSession(ctx, workingDir, args, consumer)
}

// Verify reports whether path is an executable CLI right now.
func (m *Manager) Verify(ctx context.Context, path string) bool {
	return m.detector.Verify(ctx, path)
}

// IsAvailable cheaply reports whether the CLI looks usable.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	return m.detector.IsAvailable(ctx)
}

// Version returns the detected CLI version, failing before a successful
// Detect.
func (m *Manager) Version() (string, error) {
	return m.detector.Version()
}

// Stats summarizes the detection state for diagnostics.
type Stats struct {
	Detected     bool          `json:"detected"`
	Platform     Platform      `json:"platform"`
	Mode         ExecutionMode `json:"mode,omitempty"`
	Method       string        `json:"method,omitempty"`
	CLIPath      string        `json:"cliPath,omitempty"`
	Version      string        `json:"version,omitempty"`
	Distribution string        `json:"distribution,omitempty"`
	CacheEnabled bool          `json:"cacheEnabled"`
}

// Stats reports the current detection state without probing.
func (m *Manager) Stats() Stats {
	s := Stats{
		Platform:     detect.CurrentPlatform(),
		CacheEnabled: m.cache != nil,
	}

	m.mu.Lock()
	r := m.last
	m.mu.Unlock()

	if r == nil || !r.Success {
		return s
	}

	s.Detected = true
	s.Mode = r.Mode
	s.Method = r.Method
	s.CLIPath = r.CLIPath
	s.Version = r.Version
	s.Distribution = r.Distribution

	return s
}

// Installation is one usable CLI install reported by ListInstallations.
type Installation struct {
	Path         string        `json:"path"`
	ResolvedPath string        `json:"resolvedPath,omitempty"`
	Version      string        `json:"version,omitempty"`
	Method       string        `json:"method"`
	Mode         ExecutionMode `json:"mode"`
	Distribution string        `json:"distribution,omitempty"`
}

// ListInstallations enumerates usable installs: a fresh detection plus the
// user-configured override when it verifies, deduplicated by resolved path.
func (m *Manager) ListInstallations(ctx context.Context) []Installation {
	var installs []Installation

	seen := map[string]bool{}

	add := func(i Installation) {
		key := i.ResolvedPath
		if key == "" {
			key = i.Path
		}

		if key == "" || seen[key] {
			return
		}

		seen[key] = true
		installs = append(installs, i)
	}

	if r := m.detectFresh(ctx); r.Success {
		add(Installation{
			Path:         r.CLIPath,
			ResolvedPath: r.ResolvedPath,
			Version:      r.Version,
			Method:       r.Method,
			Mode:         r.Mode,
			Distribution: r.Distribution,
		})
	}

	if override := m.cfg.CLIPath(); override != "" && m.detector.Verify(ctx, override) {
		add(Installation{
			Path:   override,
			Method: MethodUserConfigured,
			Mode:   ModeNative,
		})
	}

	return installs
}
