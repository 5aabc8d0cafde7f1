package detect

import "regexp"

// versionManager describes one Node version manager that may shim the CLI.
// Lookup is a shell command that prints the shim path on stdout; it runs
// through a login shell so the manager's own init has a chance to execute.
type versionManager struct {
	Name string

	// Lookup prints the path of the claude shim, exiting non-zero when the
	// manager or the shim is absent.
	Lookup string

	// pathRe extracts the managed Node version from a resolved binary
	// path, for provenance metadata.
	pathRe *regexp.Regexp
}

// versionManagers is the fixed probing order: nvm first as the
// overwhelmingly common choice, then the general-purpose managers.
var versionManagers = []versionManager{
	{
		Name: "nvm",
		Lookup: `export NVM_DIR="${NVM_DIR:-$HOME/.nvm}"; ` +
			`[ -s "$NVM_DIR/nvm.sh" ] && . "$NVM_DIR/nvm.sh"; command -v claude`,
		pathRe: regexp.MustCompile(`\.nvm/versions/node/(v?[0-9][^/]*)/`),
	},
	{
		Name:   "fnm",
		Lookup: `command -v fnm >/dev/null && eval "$(fnm env 2>/dev/null)"; command -v claude`,
		pathRe: regexp.MustCompile(`fnm[^ ]*?/node-versions/(v?[0-9][^/]*)/`),
	},
	{
		Name:   "n",
		Lookup: `command -v n >/dev/null && command -v claude`,
		pathRe: regexp.MustCompile(`/n/versions/node/(v?[0-9][^/]*)/`),
	},
	{
		Name:   "volta",
		Lookup: `command -v volta >/dev/null && volta which claude 2>/dev/null`,
		pathRe: regexp.MustCompile(`\.volta/tools/image/node/(v?[0-9][^/]*)/`),
	},
	{
		Name:   "asdf",
		Lookup: `command -v asdf >/dev/null && asdf which claude 2>/dev/null`,
		pathRe: regexp.MustCompile(`\.asdf/installs/nodejs/(v?[0-9][^/]*)/`),
	},
}

// provenance pattern-matches a resolved install path against every known
// manager and returns the owner plus the managed Node version, or empty
// strings when the path is not manager-owned.
func provenance(resolvedPath string) (manager, nodeVersion string) {
	if resolvedPath == "" {
		return "", ""
	}

	for _, vm := range versionManagers {
		if m := vm.pathRe.FindStringSubmatch(resolvedPath); m != nil {
			return vm.Name, m[1]
		}
	}

	return "", ""
}
