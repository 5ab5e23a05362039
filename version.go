package ota

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version and Prerelease are overridden at build time with
// -ldflags "-X github.com/frantjc/ota.Version=...".
var (
	Version    = "0.0.0"
	Prerelease = ""
)

// SemVer returns the version of ota, or 0.0.0 if the version it was
// built with is not valid semantic versioning.
func SemVer() string {
	v := "v" + strings.TrimPrefix(Version, "v")
	if Prerelease != "" {
		v += "-" + Prerelease
	}

	if !semver.IsValid(v) {
		return "0.0.0"
	}

	return strings.TrimPrefix(v, "v")
}
