// Package version exposes the build-time version string, embedded from a
// VERSION file so a release build never drifts from its tag.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Build-time variables, set via -ldflags at release build time.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App returns the embedded semantic version.
func App() string {
	return strings.TrimSpace(versionFile)
}

// Platform returns the OS/architecture combination, e.g. "linux/amd64".
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
