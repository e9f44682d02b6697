package config

import (
	"os"
	"testing"
)

func TestDefaultNavigatorConfig(t *testing.T) {
	cfg := DefaultNavigatorConfig()

	if cfg.CacheSize != 64 {
		t.Errorf("expected CacheSize=64, got %d", cfg.CacheSize)
	}
	if cfg.Outline.MarkerAttribute != "bl_idname" {
		t.Errorf("expected MarkerAttribute='bl_idname', got %q", cfg.Outline.MarkerAttribute)
	}
	if cfg.Outline.MaxPreviewLength != 50 {
		t.Errorf("expected MaxPreviewLength=50, got %d", cfg.Outline.MaxPreviewLength)
	}

	// Every kind is visible by default
	for _, kind := range ShowKinds {
		if !cfg.Show[kind] {
			t.Errorf("expected %s visible by default", kind)
		}
	}
	if len(cfg.Show) != len(ShowKinds) {
		t.Errorf("expected %d show toggles, got %d", len(ShowKinds), len(cfg.Show))
	}
}

func TestLoadNavigatorConfigFromEnv(t *testing.T) {
	envVars := []string{
		"SCRIPTMAP_OUTLINE_MARKER_ATTRIBUTE",
		"SCRIPTMAP_OUTLINE_PREVIEW_LENGTH",
		"SCRIPTMAP_NAV_CACHE_SIZE",
		"SCRIPTMAP_NAV_SHOW_METHOD",
		"SCRIPTMAP_NAV_SHOW_VARIABLE",
	}
	saved := make(map[string]string)
	for _, v := range envVars {
		saved[v] = os.Getenv(v)
	}
	defer func() {
		for k, v := range saved {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	os.Setenv("SCRIPTMAP_OUTLINE_MARKER_ATTRIBUTE", "bl_label")
	os.Setenv("SCRIPTMAP_OUTLINE_PREVIEW_LENGTH", "80")
	os.Setenv("SCRIPTMAP_NAV_CACHE_SIZE", "16")
	os.Setenv("SCRIPTMAP_NAV_SHOW_METHOD", "false")
	os.Setenv("SCRIPTMAP_NAV_SHOW_VARIABLE", "off")

	cfg := LoadNavigatorConfigFromEnv()

	if cfg.Outline.MarkerAttribute != "bl_label" {
		t.Errorf("expected MarkerAttribute='bl_label', got %q", cfg.Outline.MarkerAttribute)
	}
	if cfg.Outline.MaxPreviewLength != 80 {
		t.Errorf("expected MaxPreviewLength=80, got %d", cfg.Outline.MaxPreviewLength)
	}
	if cfg.CacheSize != 16 {
		t.Errorf("expected CacheSize=16, got %d", cfg.CacheSize)
	}
	if cfg.Show["method"] {
		t.Error("expected methods hidden")
	}
	if cfg.Show["variable"] {
		t.Error("expected variables hidden")
	}
	if !cfg.Show["class"] {
		t.Error("expected classes still visible")
	}
}

func TestNavigatorConfigValidate(t *testing.T) {
	cfg := DefaultNavigatorConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config valid, got %v", err)
	}

	if err := cfg.WithCacheSize(0).Validate(); err == nil {
		t.Error("expected error for zero cache size")
	}

	bad := cfg.WithShow("decorator", true)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown show kind")
	}
}

func TestNavigatorConfigWithShow(t *testing.T) {
	cfg := DefaultNavigatorConfig()
	updated := cfg.WithShow("method", false)

	if updated.Show["method"] {
		t.Error("expected methods hidden in updated config")
	}
	// The original map is untouched
	if !cfg.Show["method"] {
		t.Error("expected original config unchanged")
	}
}
