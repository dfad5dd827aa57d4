// Package version holds the release version of the finder binaries.
package version

// Current is bumped on release, without a leading "v".
const Current = "0.4.0"

// Commit is set at build time with -ldflags "-X .../internal/version.Commit=<sha>".
var Commit = "unknown"

// String renders the version line printed by `emailfinder version`.
func String() string {
	return "emailfinder " + Current + " (" + Commit + ")"
}
