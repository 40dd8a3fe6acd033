// Package misc keeps build time information.
package misc

// Set by the linker: -ldflags "-X slideshow/misc.version=... -X slideshow/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "slideshow"

// GetAppName returns the name of the program regardless of how the binary was renamed.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the program was built from.
func GetGitHash() string {
	return gitHash
}

