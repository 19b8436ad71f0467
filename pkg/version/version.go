// Package version carries build metadata injected through -ldflags.
package version

import "runtime/debug"

// Build metadata. Overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/relabel/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "<unknown>"
)

// String returns "version (commit)", falling back to the module version
// recorded in the binary when Version was not injected.
func String() string {
	v := Version

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}

	return v + " (" + Commit + ")"
}
