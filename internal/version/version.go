// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string `json:"version"`              // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string `json:"gitCommit,omitempty"` // Short git commit hash (e.g., "abc1234")
	BuildTime string `json:"buildTime,omitempty"` // Build timestamp in RFC3339 format
}

// String returns "version (commit, built time)", omitting unknown parts.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	switch {
	case i.GitCommit != "" && i.BuildTime != "":
		return v + " (" + i.GitCommit + ", built " + i.BuildTime + ")"
	case i.GitCommit != "":
		return v + " (" + i.GitCommit + ")"
	default:
		return v
	}
}
