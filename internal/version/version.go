// Package version carries the fence-planner build identity, stamped into
// the binary at link time.
package version

import "fmt"

// Set via -ldflags="-X fence-planner/internal/version.Version=..." and
// friends; the zero builds below are what a plain `go build` reports.
var (
	// Version is the release version.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit is the abbreviated commit hash.
	GitCommit = "unknown"
)

// String formats the full build identity for -version output.
func String() string {
	return fmt.Sprintf("fenceplan %s (%s, built %s)", Version, GitCommit, BuildTime)
}
