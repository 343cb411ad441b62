// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. Set manually for releases.
	Version = "0.1.0-dev"
)

// commitLength is how many characters of a VCS revision are shown.
const commitLength = 12

// Info returns a one-line version string, for example
// "0.1.0-dev (abc1234, 2026-02-10T09:00:00Z)".
func Info() string {
	commit, buildTime, dirty := stamp()
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, buildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is the User-Agent header sent by API clients.
func UserAgent() string {
	return "qaboard/" + Version
}

// stamp returns the commit and build time, preferring ldflags values
// over the embedded VCS settings.
func stamp() (commit, buildTime string, dirty bool) {
	commit, buildTime = GitCommit, BuildTime
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, buildTime, false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "unknown" {
				commit = setting.Value
				if len(commit) > commitLength {
					commit = commit[:commitLength]
				}
			}
		case "vcs.time":
			if buildTime == "unknown" {
				buildTime = setting.Value
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return commit, buildTime, dirty
}
