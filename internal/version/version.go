package version

import (
	"os"
	"runtime"
)

var (
	// Set during the build process using ldflags
	Version   = "development"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

func init() {
	if v := os.Getenv("FIBERWATCH_VERSION"); v != "" {
		Version = v
	}
	if c := os.Getenv("FIBERWATCH_COMMIT_SHA"); c != "" {
		CommitSHA = c
	}
	if b := os.Getenv("FIBERWATCH_BUILD_TIME"); b != "" {
		BuildTime = b
	}
}

// GetVersion returns the full version string
func GetVersion() string {
	return Version + " (" + CommitSHA + ") built at " + BuildTime
}

// Platform returns the os/arch pair the binary was built for.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
