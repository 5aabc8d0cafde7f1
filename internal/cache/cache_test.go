package cache

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhsama/claudetect/internal/detect"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) *FileCache {
	t.Helper()

	return NewAt(filepath.Join(t.TempDir(), "detection.json"), testLogger())
}

func successResult() *detect.Result {
	return &detect.Result{
		Success:  true,
		Platform: detect.PlatformLinux,
		Mode:     detect.ModeNative,
		CLIPath:  "/usr/local/bin/claude",
		Version:  "2.1.0",
		Method:   detect.MethodShell,
	}
}

func TestGet_MissWhenFileAbsent(t *testing.T) {
	c := testCache(t)

	require.Nil(t, c.Get(detect.PlatformLinux))
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := testCache(t)

	c.Put(successResult())

	got := c.Get(detect.PlatformLinux)
	require.NotNil(t, got)
	require.Equal(t, "/usr/local/bin/claude", got.CLIPath)
	require.Equal(t, "2.1.0", got.Version)
}

func TestGet_MissOnPlatformMismatch(t *testing.T) {
	c := testCache(t)

	c.Put(successResult())

	require.Nil(t, c.Get(detect.PlatformWindows))
}

func TestGet_MissOnCorruptFile(t *testing.T) {
	c := testCache(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(c.path), 0o755))
	require.NoError(t, os.WriteFile(c.path, []byte("{not json"), 0o644))

	require.Nil(t, c.Get(detect.PlatformLinux))
}

func TestGet_SuccessEntryExpiresAfterLongTTL(t *testing.T) {
	c := testCache(t)

	c.Put(successResult())

	// Still valid just before the success TTL.
	c.now = func() time.Time { return time.Now().Add(successTTL - time.Minute) }
	require.NotNil(t, c.Get(detect.PlatformLinux))

	c.now = func() time.Time { return time.Now().Add(successTTL + time.Minute) }
	require.Nil(t, c.Get(detect.PlatformLinux))
}

func TestGet_FailureEntryExpiresSooner(t *testing.T) {
	c := testCache(t)

	c.Put(&detect.Result{
		Success:  false,
		Platform: detect.PlatformLinux,
		Error:    &detect.ResultError{Kind: "not_found", Message: "no install"},
	})

	// A failure is retried after minutes, well before a success would expire.
	c.now = func() time.Time { return time.Now().Add(failureTTL + time.Second) }
	require.Nil(t, c.Get(detect.PlatformLinux))
}

func TestClear(t *testing.T) {
	c := testCache(t)

	c.Put(successResult())
	c.Clear()

	require.Nil(t, c.Get(detect.PlatformLinux))

	// Clearing an already-missing file is fine.
	c.Clear()
}
