package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	Version = "1.0.0"

	// DataFormatVersion is the version of the cleaned CSV layout
	DataFormatVersion = "v1"

	// APIVersion is the version of the JSON API and WebSocket messages
	APIVersion = "v1"
)

// Set with -ldflags "-X escolacli/pkg/contracts.BuildTime=... -X escolacli/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo reports the build. Without ldflags the commit and time
// come from the VCS stamp of the Go toolchain, when present.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "unknown":
				info.GitCommit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.BuildTime == "unknown":
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// GetVersionString is printed by -version
func GetVersionString() string {
	return fmt.Sprintf("Dashboard Escolar v%s", Version)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
