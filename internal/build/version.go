// Package build carries the version information of the rxtk binary.
package build

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version contains the current semantic version of rxtk.
const Version = "0.3.0"

const commitKey = "vcs.revision"

// FullVersion returns the version followed by the commit the binary was built
// from, when known, and the Go runtime details.
func FullVersion() string {
	goVersionArch := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	commit, dirty := vcsCommit()
	if commit == "" {
		return fmt.Sprintf("%s (%s)", Version, goVersionArch)
	}
	if dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit/%s, %s)", Version, commit, goVersionArch)
}

// VersionDetails returns the structured details about the version.
func VersionDetails() map[string]string {
	v := Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	details := map[string]string{
		"version":    v,
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
	}
	if commit, dirty := vcsCommit(); commit != "" {
		details["commit"] = commit
		if dirty {
			details["commit_dirty"] = "true"
		}
	}
	return details
}

func vcsCommit() (commit string, dirty bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case commitKey:
			commit = s.Value
			if len(commit) > 10 {
				commit = commit[:10]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return commit, dirty
}
