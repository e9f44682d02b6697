// Package pack locates a Python add-on's root directory, reads its
// name and version, and builds installable zip archives from it.
//
// Two metadata sources are recognized: a blender_manifest.toml (the
// extension format) and a legacy __init__.py carrying a bl_info dict.
// The manifest wins when both are present in the same directory.
package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Metadata file names checked during root detection.
const (
	ManifestFile = "blender_manifest.toml"
	InitFile     = "__init__.py"
)

// Add-on kinds, named after the metadata source that declared them.
const (
	KindAddon     = "addon"
	KindExtension = "extension"
)

// UnknownVersion marks metadata that carried a name but no usable
// version. Archive names fall back to the bare name in that case.
const UnknownVersion = "Unknown"

var (
	tomlNamePattern    = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)
	tomlVersionPattern = regexp.MustCompile(`version\s*=\s*["']([^"']+)["']`)

	// Tolerates one level of nested braces inside the bl_info dict.
	blInfoPattern        = regexp.MustCompile(`bl_info\s*=\s*(\{(?:[^{}]|\{[^}]*\})*\})`)
	blInfoNamePattern    = regexp.MustCompile(`["']name["']\s*:\s*["']([^"']+)["']`)
	blInfoVersionPattern = regexp.MustCompile(`["']version["']\s*:\s*\(([^)]+)\)`)
)

// Info describes a detected add-on.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
	Root    string `json:"root,omitempty"`
}

// CleanName returns a filesystem-safe form of the add-on name:
// lowercase, with spaces and dashes folded to underscores.
func (i Info) CleanName() string {
	name := strings.ToLower(i.Name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// ParseManifest extracts name and version from blender_manifest.toml
// content. Reports false when no name is present.
func ParseManifest(content string) (Info, bool) {
	name := tomlNamePattern.FindStringSubmatch(content)
	if name == nil {
		return Info{}, false
	}
	version := UnknownVersion
	if m := tomlVersionPattern.FindStringSubmatch(content); m != nil {
		version = m[1]
	}
	return Info{Name: name[1], Version: version, Kind: KindExtension}, true
}

// ParseBlInfo extracts name and version from a script's bl_info dict.
// The version tuple is joined with dots, so (2, 1, 0) becomes "2.1.0".
// Reports false when no bl_info with a name is present.
func ParseBlInfo(content string) (Info, bool) {
	block := blInfoPattern.FindStringSubmatch(content)
	if block == nil {
		return Info{}, false
	}
	name := blInfoNamePattern.FindStringSubmatch(block[1])
	if name == nil {
		return Info{}, false
	}
	version := UnknownVersion
	if m := blInfoVersionPattern.FindStringSubmatch(block[1]); m != nil {
		if joined := joinVersionTuple(m[1]); joined != "" {
			version = joined
		}
	}
	return Info{Name: name[1], Version: version, Kind: KindAddon}, true
}

// joinVersionTuple turns the inside of a version tuple into a dotted
// string, dropping empty segments left by trailing commas.
func joinVersionTuple(raw string) string {
	raw = strings.ReplaceAll(raw, " ", "")
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// FindRoot walks upward from path looking for an add-on root. Each
// directory is checked for a parsable manifest first, then a legacy
// __init__.py. When path is itself a directory the search starts
// there, otherwise at its parent.
func FindRoot(path string) (Info, error) {
	if path == "" {
		return Info{}, fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Info{}, fmt.Errorf("locating %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if fi.IsDir() {
		dir = abs
	}
	for {
		if info, ok := rootAt(dir); ok {
			return info, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Info{}, fmt.Errorf("no add-on root above %s", path)
		}
		dir = parent
	}
}

// rootAt reports whether dir holds add-on metadata. A manifest that
// fails to parse falls through to __init__.py in the same directory.
func rootAt(dir string) (Info, bool) {
	if content, err := os.ReadFile(filepath.Join(dir, ManifestFile)); err == nil {
		if info, ok := ParseManifest(string(content)); ok {
			info.Root = dir
			return info, true
		}
	}
	if content, err := os.ReadFile(filepath.Join(dir, InitFile)); err == nil {
		if info, ok := ParseBlInfo(string(content)); ok {
			info.Root = dir
			return info, true
		}
	}
	return Info{}, false
}
