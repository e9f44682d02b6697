package pack

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestParseManifest(t *testing.T) {
	t.Run("name and version", func(t *testing.T) {
		content := "id = \"script_map\"\nversion = \"2.1.0\"\nname = \"Script Map\"\ntagline = \"Outline navigation\"\n"
		info, ok := ParseManifest(content)
		if !ok {
			t.Fatal("expected manifest to parse")
		}
		if info.Name != "Script Map" {
			t.Errorf("expected name Script Map, got %s", info.Name)
		}
		if info.Version != "2.1.0" {
			t.Errorf("expected version 2.1.0, got %s", info.Version)
		}
		if info.Kind != KindExtension {
			t.Errorf("expected kind %s, got %s", KindExtension, info.Kind)
		}
	})

	t.Run("single quotes without version", func(t *testing.T) {
		info, ok := ParseManifest("name = 'panel kit'\n")
		if !ok {
			t.Fatal("expected manifest to parse")
		}
		if info.Name != "panel kit" {
			t.Errorf("expected name panel kit, got %s", info.Name)
		}
		if info.Version != UnknownVersion {
			t.Errorf("expected unknown version, got %s", info.Version)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if _, ok := ParseManifest("version = \"1.0\"\n"); ok {
			t.Error("expected manifest without name to fail")
		}
	})
}

func TestParseBlInfo(t *testing.T) {
	t.Run("typical dict", func(t *testing.T) {
		content := `bl_info = {
    "name": "Code Map",
    "author": "someone",
    "version": (2, 1, 0),
    "blender": (4, 2, 0),
    "category": "Text Editor",
}
`
		info, ok := ParseBlInfo(content)
		if !ok {
			t.Fatal("expected bl_info to parse")
		}
		if info.Name != "Code Map" {
			t.Errorf("expected name Code Map, got %s", info.Name)
		}
		if info.Version != "2.1.0" {
			t.Errorf("expected version 2.1.0, got %s", info.Version)
		}
		if info.Kind != KindAddon {
			t.Errorf("expected kind %s, got %s", KindAddon, info.Kind)
		}
	})

	t.Run("single quotes", func(t *testing.T) {
		info, ok := ParseBlInfo("bl_info = {'name': 'panel kit', 'version': (0, 9)}\n")
		if !ok {
			t.Fatal("expected bl_info to parse")
		}
		if info.Name != "panel kit" {
			t.Errorf("expected name panel kit, got %s", info.Name)
		}
		if info.Version != "0.9" {
			t.Errorf("expected version 0.9, got %s", info.Version)
		}
	})

	t.Run("no version", func(t *testing.T) {
		info, ok := ParseBlInfo("bl_info = {\"name\": \"Bare\"}\n")
		if !ok {
			t.Fatal("expected bl_info to parse")
		}
		if info.Version != UnknownVersion {
			t.Errorf("expected unknown version, got %s", info.Version)
		}
	})

	t.Run("trailing comma in tuple", func(t *testing.T) {
		info, ok := ParseBlInfo("bl_info = {\"name\": \"One\", \"version\": (1,)}\n")
		if !ok {
			t.Fatal("expected bl_info to parse")
		}
		if info.Version != "1" {
			t.Errorf("expected version 1, got %s", info.Version)
		}
	})

	t.Run("no bl_info", func(t *testing.T) {
		if _, ok := ParseBlInfo("import os\n\nprint(os.name)\n"); ok {
			t.Error("expected plain script to fail")
		}
	})

	t.Run("dict without name", func(t *testing.T) {
		if _, ok := ParseBlInfo("bl_info = {\"version\": (1, 0)}\n"); ok {
			t.Error("expected bl_info without name to fail")
		}
	})
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Script Map", "script_map"},
		{"My-Tool", "my_tool"},
		{"Big Build-Kit", "big_build_kit"},
		{"simple", "simple"},
	}
	for _, tt := range tests {
		got := Info{Name: tt.name}.CleanName()
		if got != tt.want {
			t.Errorf("CleanName(%q): expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		desc    string
		version string
		style   string
		want    string
	}{
		{"name only", "2.1.0", "name", "code_map.zip"},
		{"underscore version", "2.1.0", "name_underscore_version", "code_map_2.1.0.zip"},
		{"dash version", "2.1.0", "name_dash_version", "code_map-2.1.0.zip"},
		{"unknown version ignores style", UnknownVersion, "name_dash_version", "code_map.zip"},
		{"empty version ignores style", "", "name_underscore_version", "code_map.zip"},
		{"blank version ignores style", "   ", "name_underscore_version", "code_map.zip"},
		{"unrecognized style falls back", "2.1.0", "bogus", "code_map.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			info := Info{Name: "Code Map", Version: tt.version}
			if got := ArchiveName(info, tt.style); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFindRoot(t *testing.T) {
	base := t.TempDir()

	addonInit := "bl_info = {\n    \"name\": \"Deep Tool\",\n    \"version\": (1, 2),\n}\n"
	writeFile(t, filepath.Join(base, "addon", InitFile), addonInit)
	writeFile(t, filepath.Join(base, "addon", "core", "util.py"), "VALUE = 1\n")

	t.Run("walks up from nested file", func(t *testing.T) {
		info, err := FindRoot(filepath.Join(base, "addon", "core", "util.py"))
		if err != nil {
			t.Fatalf("finding root: %v", err)
		}
		if info.Root != filepath.Join(base, "addon") {
			t.Errorf("expected root %s, got %s", filepath.Join(base, "addon"), info.Root)
		}
		if info.Name != "Deep Tool" {
			t.Errorf("expected name Deep Tool, got %s", info.Name)
		}
		if info.Version != "1.2" {
			t.Errorf("expected version 1.2, got %s", info.Version)
		}
		if info.Kind != KindAddon {
			t.Errorf("expected kind %s, got %s", KindAddon, info.Kind)
		}
	})

	t.Run("starts at directory argument", func(t *testing.T) {
		info, err := FindRoot(filepath.Join(base, "addon"))
		if err != nil {
			t.Fatalf("finding root: %v", err)
		}
		if info.Name != "Deep Tool" {
			t.Errorf("expected name Deep Tool, got %s", info.Name)
		}
	})

	t.Run("manifest wins over bl_info", func(t *testing.T) {
		writeFile(t, filepath.Join(base, "ext", "blender_manifest.toml"),
			"id = \"ext_tool\"\nversion = \"3.0.1\"\nname = \"Ext Tool\"\n")
		writeFile(t, filepath.Join(base, "ext", InitFile),
			"bl_info = {\"name\": \"Legacy Name\", \"version\": (1, 0)}\n")

		info, err := FindRoot(filepath.Join(base, "ext", InitFile))
		if err != nil {
			t.Fatalf("finding root: %v", err)
		}
		if info.Name != "Ext Tool" {
			t.Errorf("expected name Ext Tool, got %s", info.Name)
		}
		if info.Kind != KindExtension {
			t.Errorf("expected kind %s, got %s", KindExtension, info.Kind)
		}
		if info.Version != "3.0.1" {
			t.Errorf("expected version 3.0.1, got %s", info.Version)
		}
	})

	t.Run("no metadata anywhere", func(t *testing.T) {
		writeFile(t, filepath.Join(base, "plain", "notes.py"), "x = 1\n")
		if _, err := FindRoot(filepath.Join(base, "plain", "notes.py")); err == nil {
			t.Error("expected error for tree without metadata")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := FindRoot(filepath.Join(base, "nowhere.py")); err == nil {
			t.Error("expected error for missing path")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := FindRoot(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}
