// Package platform lists the filesystem locations where lxpanel keeps its
// plugins and panel layouts.
package platform

import (
	"path/filepath"
	"strings"
)

// DefaultLibRoot is the root searched for per-architecture plugin directories.
const DefaultLibRoot = "/usr/lib"

// DefaultProfile is the lxpanel profile shipped with Raspberry Pi OS.
const DefaultProfile = "LXDE-pi"

var triplets = map[string][]string{
	"arm":   {"arm-linux-gnueabihf", "arm-linux-gnueabi"},
	"arm64": {"aarch64-linux-gnu"},
	"amd64": {"x86_64-linux-gnu"},
	"386":   {"i386-linux-gnu"},
}

// Triplets returns the Debian multiarch directory names for a GOARCH value.
func Triplets(goarch string) []string {
	return append([]string(nil), triplets[goarch]...)
}

// PluginDirCandidates returns plugin directories to search, most specific first.
func PluginDirCandidates(libRoot, goarch string) []string {
	if libRoot == "" {
		libRoot = DefaultLibRoot
	}
	var dirs []string
	for _, t := range Triplets(goarch) {
		dirs = append(dirs, filepath.Join(libRoot, t, "lxpanel", "plugins"))
	}
	return append(dirs, filepath.Join(libRoot, "lxpanel", "plugins"))
}

// PanelConfigCandidates returns panel layout files to search for a profile.
// The two workDir-relative entries cover running from a checkout inside the
// user's home directory.
func PanelConfigCandidates(home, xdgConfigHome, workDir, profile string) []string {
	if profile == "" {
		profile = DefaultProfile
	}
	rel := filepath.Join("lxpanel", profile, "panels", "panel")

	var paths []string
	if xdgConfigHome != "" {
		paths = append(paths, filepath.Join(xdgConfigHome, rel))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", rel))
	}
	if workDir != "" {
		paths = append(paths,
			filepath.Join(workDir, "..", "..", ".config", rel),
			filepath.Join(workDir, "..", ".config", rel),
		)
	}
	return dedupe(paths)
}

// ExpandPath expands a leading "~/" against home.
func ExpandPath(path, home string) string {
	if home != "" && strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
