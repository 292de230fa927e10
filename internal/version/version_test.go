package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillUsesModuleBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	got := fill(Info{Version: "dev"}, bi)
	assert.Equal(t, Info{Version: "v1.4.0", Commit: "abc123", BuildDate: "2026-01-02T03:04:05Z"}, got)
}

func TestFillKeepsLinkedValues(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	}
	linked := Info{Version: "v1.0.0", Commit: "deadbeef"}
	assert.Equal(t, linked, fill(linked, bi))
}

func TestFillIgnoresDevelBuilds(t *testing.T) {
	got := fill(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", got.Version)
}

func TestStringOmitsEmptyFields(t *testing.T) {
	s := Info{Version: "v1.0.0", GoVersion: "go1.25.3"}.String()
	assert.Equal(t, "gitscribe version v1.0.0\nGo version: go1.25.3\n", s)

	s = Info{Version: "v1.0.0", Commit: "abc", BuildDate: "today", GoVersion: "go1.25.3"}.String()
	assert.Contains(t, s, "Commit: abc\nBuilt: today\n")
}
