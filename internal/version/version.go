package version

import "fmt"

var (
	// Version is the semantic version of the appdock build. Overridden via ldflags on release builds.
	Version = "0.3.0"
	// Commit is the short git SHA embedded at build time (or "none" for local builds).
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version line naming the binary,
// the commit, and the build timestamp.
func Full() string {
	return fmt.Sprintf("appdock %s (commit: %s, built at: %s)", Version, Commit, BuildTime)
}
