// Package misc keeps program metadata set at build time.
package misc

import (
	"runtime/debug"
)

// Values are set with -ldflags "-X stylx/misc.version=... -X stylx/misc.gitHash=...".
var (
	appName = "stylx"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns revision program was built from.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
