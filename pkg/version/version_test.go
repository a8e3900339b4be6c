package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	v := Version{Major: "1", Minor: "2", Patch: "3", Metadata: "rc1", Build: "abc"}
	if got := v.String(); got != "Version: 1.2.3-rc1\nBuild: abc" {
		t.Fatalf("unexpected version %q", got)
	}
	if !strings.HasPrefix(DeetVersion.String(), "Version: 0.3.0\nBuild: ") {
		t.Fatalf("unexpected version %q", DeetVersion.String())
	}
}

func TestVersionFromVCS(t *testing.T) {
	old := readBuildInfo
	defer func() { readBuildInfo = old }()

	readBuildInfo = func() *debug.BuildInfo {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "f00d"}}}
	}
	if got := (Version{Major: "1", Minor: "0", Patch: "0"}).String(); got != "Version: 1.0.0\nBuild: f00d" {
		t.Fatalf("unexpected version %q", got)
	}

	readBuildInfo = func() *debug.BuildInfo { return nil }
	if got := (Version{Major: "1", Minor: "0", Patch: "0"}).String(); got != "Version: 1.0.0\nBuild: unknown" {
		t.Fatalf("unexpected version %q", got)
	}
}

func TestFormatBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/deet-dbg/deet", Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.time", Value: "2024-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	got := formatBuildInfo("go1.21.0", "linux", "amd64", info)
	want := "Go: go1.21.0\nPlatform: linux/amd64\nModule: github.com/deet-dbg/deet (devel)\nCommit time: 2024-01-02T03:04:05Z\nModified: yes\n"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	got = formatBuildInfo("go1.21.0", "linux", "arm64", nil)
	if !strings.HasSuffix(got, "Module: not built in module mode\n") {
		t.Fatalf("unexpected build info %q", got)
	}
}
