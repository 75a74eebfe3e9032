// Package version reports the duel client's version.
//
// Commit is set with -ldflags during release builds.
package version

import (
	"fmt"
	"strings"
)

// Commit is the git commit of this build, if known.
var Commit string

const (
	appMajor uint = 1
	appMinor uint = 0
	appPatch uint = 0

	// appPreRelease may only contain [0-9A-Za-z-].
	appPreRelease = ""
)

// Version returns the semantic version sent to the server on login.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if pre := normalize(appPreRelease); pre != "" {
		v += "-" + pre
	}
	return v
}

// Rich returns Version plus the build commit when one was stamped.
func Rich() string {
	commit := strings.TrimSpace(Commit)
	if commit == "" {
		return Version()
	}
	return fmt.Sprintf("%s commit=%s", Version(), commit)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
			return r
		default:
			return -1
		}
	}, s)
}
