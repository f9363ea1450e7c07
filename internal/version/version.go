// Package version reports which build of finq is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags. When Commit is left unset, the VCS
// revision stamped by the Go toolchain is used instead.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
}

// Get returns the build info, filling gaps from the embedded VCS stamp.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit returns the first seven characters of the commit hash.
func (i Info) ShortCommit() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return commit
}

// String formats the info for --version.
func (i Info) String() string {
	return fmt.Sprintf("finq %s (commit: %s, built: %s)", i.Version, i.ShortCommit(), i.BuildTime)
}

// String returns the version line of the running build.
func String() string {
	return Get().String()
}
