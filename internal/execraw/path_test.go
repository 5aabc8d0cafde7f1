package execraw

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAugmentedPath_PrependsWellKnownDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("augmentation is a Unix concern")
	}

	got := AugmentedPath("/sbin")

	require.True(t, strings.HasSuffix(got, ":/sbin"))
	require.Contains(t, got, "/usr/local/bin")

	parts := strings.Split(got, ":")
	require.Greater(t, len(parts), 2)
}

func TestAugmentedPath_DoesNotDuplicateExistingEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("augmentation is a Unix concern")
	}

	got := AugmentedPath("/usr/local/bin:/usr/bin")

	require.Equal(t, 1, strings.Count(got, "/usr/local/bin:"))
}

func TestAugmentedPath_EmptyBase(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("augmentation is a Unix concern")
	}

	got := AugmentedPath("")

	require.NotEmpty(t, got)
	require.False(t, strings.HasSuffix(got, ":"))
}
