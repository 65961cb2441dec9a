// Package version reports the server build. Version is set at link time:
//
//	go build -ldflags "-X github.com/ramonehamilton/spellduel/internal/version.Version=v1.2.3"
package version

import (
	"runtime"
	"runtime/debug"
)

// Version defaults to "dev" for local builds.
var Version = "dev"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// Get returns the build info, with the VCS revision when the binary carries one.
func Get() Info {
	info := Info{Version: Version, GoVersion: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
			}
		}
	}
	return info
}
