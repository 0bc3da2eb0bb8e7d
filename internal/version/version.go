package version

import (
	"fmt"
	"runtime/debug"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/wayopenfan/wayopenfan/internal/version.Version=v1.2.3 \
//	                   -X github.com/wayopenfan/wayopenfan/internal/version.Commit=abc123"
//
// If unset, they are populated from Go's build info when available.
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		populateFromBuildInfo()
	}

	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func populateFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key != "vcs.revision" || Commit != "" {
			continue
		}
		revision := setting.Value
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
	}
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
