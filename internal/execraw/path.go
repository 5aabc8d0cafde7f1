package execraw

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// wellKnownBinDirs returns installation directories that GUI-launched
// processes commonly miss from PATH: package-manager bin dirs and the
// user-local bin. Order matters; earlier entries win lookups.
func wellKnownBinDirs() []string {
	dirs := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return dirs
	}

	return append(dirs,
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".npm-global", "bin"),
		filepath.Join(home, ".yarn", "bin"),
		filepath.Join(home, ".bun", "bin"),
		filepath.Join(home, ".volta", "bin"),
		filepath.Join(home, ".claude", "local"),
	)
}

// AugmentedPath prepends the well-known bin directories to base, skipping
// entries base already contains. On Windows the base is returned unchanged:
// lookups there go through Git Bash or WSL, which build their own PATH.
func AugmentedPath(base string) string {
	if runtime.GOOS == "windows" {
		return base
	}

	existing := map[string]bool{}
	for _, p := range filepath.SplitList(base) {
		existing[p] = true
	}

	var prepend []string
	for _, d := range wellKnownBinDirs() {
		if !existing[d] {
			prepend = append(prepend, d)
		}
	}

	if len(prepend) == 0 {
		return base
	}

	if base == "" {
		return strings.Join(prepend, string(os.PathListSeparator))
	}

	return strings.Join(prepend, string(os.PathListSeparator)) + string(os.PathListSeparator) + base
}
