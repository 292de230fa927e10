// Package version is set at build time with -ldflags "-X".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Current returns the linked values, filling gaps from the module build info
// when the binary was built with plain `go install`.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fill(info, bi)
	}
	return info
}

func fill(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "":
			info.BuildDate = s.Value
		}
	}
	return info
}

// String renders the multi-line form printed by `gitscribe version`.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gitscribe version %s\n", i.Version)
	if i.Commit != "" {
		fmt.Fprintf(&b, "Commit: %s\n", i.Commit)
	}
	if i.BuildDate != "" {
		fmt.Fprintf(&b, "Built: %s\n", i.BuildDate)
	}
	fmt.Fprintf(&b, "Go version: %s\n", i.GoVersion)
	return b.String()
}
