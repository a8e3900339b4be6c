// Package version reports the version of deet and how it was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version represents the current version of deet.
type Version struct {
	Major    string
	Minor    string
	Patch    string
	Metadata string
	// Build is the commit deet was built from. When empty it is taken
	// from the VCS stamp of the binary.
	Build string
}

// DeetVersion is the current version of deet.
var DeetVersion = Version{Major: "0", Minor: "3", Patch: "0"}

func (v Version) String() string {
	ver := fmt.Sprintf("Version: %s.%s.%s", v.Major, v.Minor, v.Patch)
	if v.Metadata != "" {
		ver += "-" + v.Metadata
	}
	build := v.Build
	if build == "" {
		build = vcsSetting(readBuildInfo(), "vcs.revision")
	}
	if build == "" {
		build = "unknown"
	}
	return fmt.Sprintf("%s\nBuild: %s", ver, build)
}

var readBuildInfo = func() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

func vcsSetting(info *debug.BuildInfo, key string) string {
	if info == nil {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// BuildInfo describes the toolchain and platform deet was built for and
// the state of its source tree.
func BuildInfo() string {
	return formatBuildInfo(runtime.Version(), runtime.GOOS, runtime.GOARCH, readBuildInfo())
}

func formatBuildInfo(goVersion, goos, goarch string, info *debug.BuildInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Go: %s\nPlatform: %s/%s\n", goVersion, goos, goarch)
	if info == nil {
		b.WriteString("Module: not built in module mode\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Module: %s %s\n", info.Main.Path, info.Main.Version)
	if t := vcsSetting(info, "vcs.time"); t != "" {
		fmt.Fprintf(&b, "Commit time: %s\n", t)
	}
	if vcsSetting(info, "vcs.modified") == "true" {
		b.WriteString("Modified: yes\n")
	}
	return b.String()
}
