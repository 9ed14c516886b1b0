// Package version exposes build information stamped in via ldflags.
package version

import "runtime"

// Set at build time:
//
//	go build -ldflags "-X github.com/mkarlsen/kontor/internal/version.Version=... \
//	                   -X github.com/mkarlsen/kontor/internal/version.Commit=... \
//	                   -X github.com/mkarlsen/kontor/internal/version.BuildTime=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
