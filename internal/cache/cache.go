// Package cache persists the last detection outcome to a small per-user
// JSON file.
//
// The cache is strictly an optimization: a missing, unparsable, expired, or
// wrong-platform file is a silent miss, never an error, and deleting the
// file at any time simply forces re-detection. There is no cross-process
// locking; concurrent writers can clobber each other's entry, which is safe
// because detection is idempotent.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zhsama/claudetect/internal/detect"
)

const (
	// successTTL keeps a confirmed install for tens of minutes.
	successTTL = 30 * time.Minute

	// failureTTL retries failed detections much sooner; the user may be
	// installing the CLI right now.
	failureTTL = 2 * time.Minute
)

// entry is the on-disk document.
type entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Platform  detect.Platform `json:"platform"`
	TTLMs     int64           `json:"ttl_ms"`
	Result    *detect.Result  `json:"result"`
}

// FileCache stores one detection result per user profile.
type FileCache struct {
	path string
	log  *slog.Logger

	// now is swappable for TTL tests.
	now func() time.Time
}

// New creates a FileCache at the default per-user location
// (<user cache dir>/claudetect/detection.json).
func New(log *slog.Logger) (*FileCache, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	return NewAt(filepath.Join(dir, "claudetect", "detection.json"), log), nil
}

// NewAt creates a FileCache at an explicit path.
func NewAt(path string, log *slog.Logger) *FileCache {
	return &FileCache{
		path: path,
		log:  log.With("component", "cache"),
		now:  time.Now,
	}
}

// Get returns the cached result, or nil on any kind of miss: file absent,
// unparsable, expired, or recorded for a different host platform.
func (c *FileCache) Get(platform detect.Platform) *detect.Result {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Debug("cache unparsable, treating as miss", "error", err)

		return nil
	}

	if e.Result == nil || e.Platform != platform {
		return nil
	}

	if c.now().Sub(e.Timestamp) >= time.Duration(e.TTLMs)*time.Millisecond {
		return nil
	}

	return e.Result
}

// Put records a result, computing the TTL from its success. Write failures
// are logged and swallowed; the cache must never break detection.
func (c *FileCache) Put(result *detect.Result) {
	if result == nil {
		return
	}

	ttl := failureTTL
	if result.Success {
		ttl = successTTL
	}

	e := entry{
		Timestamp: c.now(),
		Platform:  result.Platform,
		TTLMs:     ttl.Milliseconds(),
		Result:    result,
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		c.log.Warn("cache marshal failed", "error", err)

		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.log.Warn("cache dir create failed", "error", err)

		return
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.log.Warn("cache write failed", "error", err)
	}
}

// Clear removes the cache file. A missing file is fine.
func (c *FileCache) Clear() {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		c.log.Warn("cache remove failed", "error", err)
	}
}
