// Package version holds the build version of the server.
package version

// Version is the current released version. Overridden at build time with
// -ldflags "-X github.com/omar251/CinemaTec-sub001/internal/version.Version=...".
var Version = "0.4.0"

// DevVersion is the version suffix used for non-release builds.
var DevVersion = Version + "-dev"

func GetCurrentVersion(mode string) string {
	if mode == "prod" {
		return Version
	}
	return DevVersion
}
