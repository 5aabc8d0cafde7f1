// Package winpath maps between Windows-native absolute paths and the paths
// the same files have inside WSL.
//
// The mapping is the fixed drvfs rule: C:\Users\x <-> /mnt/c/Users/x.
// Anything outside that rule (UNC shares, relative paths, WSL-internal
// paths such as the distribution's own home directory) has no counterpart
// and translation fails explicitly rather than guessing.
package winpath

import (
	"fmt"
	"strings"

	"github.com/zhsama/claudetect/internal/detecterr"
)

// Kind classifies which world a path belongs to.
type Kind string

// Path kinds reported by DetectKind.
const (
	KindWindows Kind = "windows"
	KindWSL     Kind = "wsl"
	KindUnknown Kind = "unknown"
)

// WindowsToWSL translates an absolute drive-letter path to its /mnt mount
// inside WSL. UNC and relative paths are rejected.
func WindowsToWSL(windowsPath string) (string, error) {
	p := strings.TrimSpace(windowsPath)

	if p == "" {
		return "", &detecterr.InvalidConfigurationError{
			Field: "path", Value: windowsPath, Reason: "empty path",
		}
	}

	if strings.HasPrefix(p, `\\`) || strings.HasPrefix(p, "//") {
		return "", &detecterr.InvalidConfigurationError{
			Field: "path", Value: windowsPath,
			Reason: "UNC paths have no WSL mount",
		}
	}

	drive, rest, ok := splitDrive(p)
	if !ok {
		return "", &detecterr.InvalidConfigurationError{
			Field: "path", Value: windowsPath,
			Reason: "not an absolute drive-letter path",
		}
	}

	rest = strings.ReplaceAll(rest, `\`, "/")
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		return fmt.Sprintf("/mnt/%c", drive), nil
	}

	return fmt.Sprintf("/mnt/%c/%s", drive, rest), nil
}

// WSLToWindows translates a /mnt/<drive>/... path back to drive-letter form.
// WSL-internal paths (no /mnt prefix) have no Windows equivalent.
func WSLToWindows(wslPath string) (string, error) {
	p := strings.TrimSpace(wslPath)

	if p == "" {
		return "", &detecterr.InvalidConfigurationError{
			Field: "path", Value: wslPath, Reason: "empty path",
		}
	}

	if !strings.HasPrefix(p, "/mnt/") {
		return "", fmt.Errorf("translate %q: %w", wslPath, detecterr.ErrNoHostEquivalent)
	}

	rest := strings.TrimPrefix(p, "/mnt/")
	if rest == "" {
		return "", fmt.Errorf("translate %q: %w", wslPath, detecterr.ErrNoHostEquivalent)
	}

	drive := rest[0]
	if !isDriveLetter(drive) || (len(rest) > 1 && rest[1] != '/') {
		return "", fmt.Errorf("translate %q: %w", wslPath, detecterr.ErrNoHostEquivalent)
	}

	tail := ""
	if len(rest) > 1 {
		tail = strings.TrimPrefix(rest[1:], "/")
	}

	upper := drive - 'a' + 'A'
	if drive >= 'A' && drive <= 'Z' {
		upper = drive
	}

	if tail == "" {
		return fmt.Sprintf(`%c:\`, upper), nil
	}

	return fmt.Sprintf(`%c:\%s`, upper, strings.ReplaceAll(tail, "/", `\`)), nil
}

// DetectKind classifies a path as Windows-native, WSL, or unknown.
// Drive-letter and UNC forms are Windows; absolute POSIX paths are WSL.
func DetectKind(path string) Kind {
	p := strings.TrimSpace(path)

	if p == "" {
		return KindUnknown
	}

	if _, _, ok := splitDrive(p); ok {
		return KindWindows
	}

	if strings.HasPrefix(p, `\\`) {
		return KindWindows
	}

	if strings.HasPrefix(p, "/") {
		return KindWSL
	}

	return KindUnknown
}

// SmartConvert picks the translation direction from the path's kind.
// Unknown paths are rejected.
func SmartConvert(path string) (string, error) {
	switch DetectKind(path) {
	case KindWindows:
		return WindowsToWSL(path)
	case KindWSL:
		return WSLToWindows(path)
	default:
		return "", &detecterr.InvalidConfigurationError{
			Field: "path", Value: path,
			Reason: "cannot determine path format",
		}
	}
}

// splitDrive splits "C:\rest" into ('c', `\rest`, true). The drive letter is
// lowercased for the /mnt mount name.
func splitDrive(p string) (byte, string, bool) {
	if len(p) < 2 || p[1] != ':' {
		return 0, "", false
	}

	d := p[0]
	if !isDriveLetter(d) {
		return 0, "", false
	}

	rest := p[2:]
	if rest != "" && rest[0] != '\\' && rest[0] != '/' {
		// "C:relative" is drive-relative, not absolute.
		return 0, "", false
	}

	if d >= 'A' && d <= 'Z' {
		d = d - 'A' + 'a'
	}

	return d, rest, true
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
