// FILE: logroute/src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X logroute/src/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the full version line.
func String() string {
	return fmt.Sprintf("logroute %s (commit: %s, built: %s, %s)", Version, GitCommit, BuildTime, runtime.Version())
}

// Short returns only the version.
func Short() string {
	return Version
}
