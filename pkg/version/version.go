// Package version reports what build of repozip is running. Release builds
// stamp the variables below with -ldflags; `go install` builds fall back to
// the module and VCS data the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/quantmind-br/repozip/pkg/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary. It is served on /healthz and printed
// by `repozip version`.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the ldflags values, filling unset ones from the embedded
// build info
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && len(setting.Value) >= 12 {
				info.Commit = setting.Value[:12]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = setting.Value
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("repozip %s (commit: %s, built: %s, %s %s/%s)",
		i.Version, i.Commit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns just the version
func Short() string {
	return Get().Version
}

// Full returns the one-line description printed by `repozip version`
func Full() string {
	return Get().String()
}

// UserAgent returns the User-Agent sent to GitHub, e.g. "repozip/1.2.3"
func UserAgent() string {
	v := strings.TrimPrefix(Short(), "v")
	if v == "" {
		v = "dev"
	}
	return "repozip/" + v
}
