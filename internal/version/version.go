// Package version carries build metadata stamped in with ldflags:
//
//	go build -ldflags "-X github.com/rickgao/base-swiper/internal/version.Version=0.3.0 \
//	                   -X github.com/rickgao/base-swiper/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/base-swiper/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/swiper
package version

import "runtime"

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata in a form that serializes cleanly.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-line version string.
func String() string {
	return "base-swiper " + Version + " (" + Commit + ") built " + BuildTime
}
