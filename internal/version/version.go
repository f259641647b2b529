// Package version reports the build of the acenta binaries.
//
// Release builds stamp the variables through ldflags:
//
//	go build -o bin/acenta \
//	  -ldflags "-X github.com/kaan069/yolsepetigoAcenta/internal/version.Version=$(git describe --tags --always) \
//	            -X github.com/kaan069/yolsepetigoAcenta/internal/version.Commit=$(git rev-parse --short HEAD) \
//	            -X github.com/kaan069/yolsepetigoAcenta/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/acenta
//
// The same flags apply to ./cmd/streamtest.
package version

// Stamped by ldflags; the defaults mark a local build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String is printed by `acenta version` and `acenta --version`.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent identifies the client on REST calls and socket handshakes,
// e.g. "acenta/1.4.0 (f00dbab)".
func UserAgent() string {
	return "acenta/" + Version + " (" + Commit + ")"
}
