// Package version carries build-time version metadata, set via ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/rendergate/internal/version.Version=v1.0.0".
package version

import "fmt"

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the full version line for the version command.
func String() string {
	return fmt.Sprintf("rendergate %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
