// Package version provides build version information embedding.
//
// Version and git commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/spinup-io/spinup/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
)

// String returns the human-readable version line for --version output.
func String() string {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
					break
				}
			}
		}
	}
	if commit == "" {
		return fmt.Sprintf("spinup %s", Version)
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("spinup %s (%s)", Version, commit)
}
