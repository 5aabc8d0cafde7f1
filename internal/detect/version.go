package detect

import (
	"regexp"
	"strconv"
	"strings"
)

var semverRe = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

// parseVersion extracts "X.Y.Z" from CLI version output such as
// "2.1.0 (Claude Code)". Returns "" when no version is present.
func parseVersion(output string) string {
	m := semverRe.FindStringSubmatch(strings.TrimSpace(output))
	if m == nil {
		return ""
	}

	return m[1]
}

// compareVersions compares two dotted versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
