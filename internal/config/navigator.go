package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NavigatorConfig holds the complete navigator configuration including
// outline extraction and tree presentation settings.
type NavigatorConfig struct {
	// Outline configures declaration extraction.
	Outline OutlineConfig `yaml:"outline" json:"outline"`

	// CacheSize is the number of built outlines retained in the
	// content-addressed cache. Each entry is one parsed buffer.
	// Default: 64
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// Show controls which declaration kinds render in the tree.
	// Keys: "class", "function", "method", "property", "constant",
	// "variable". Missing keys default to visible.
	Show map[string]bool `yaml:"show" json:"show"`
}

// OutlineConfig configures how declarations are extracted from a buffer.
type OutlineConfig struct {
	// MarkerAttribute is the class-body attribute whose string value is
	// surfaced next to class nodes. Default: "bl_idname"
	MarkerAttribute string `yaml:"marker_attribute" json:"marker_attribute"`

	// MaxPreviewLength caps assignment value previews in characters.
	// Default: 50
	MaxPreviewLength int `yaml:"max_preview_length" json:"max_preview_length"`
}

// ShowKinds lists the declaration kinds that carry a visibility toggle,
// in render order.
var ShowKinds = []string{"class", "function", "method", "property", "constant", "variable"}

// DefaultNavigatorConfig returns sensible defaults for the navigator.
// All declaration kinds are visible.
func DefaultNavigatorConfig() NavigatorConfig {
	show := make(map[string]bool, len(ShowKinds))
	for _, kind := range ShowKinds {
		show[kind] = true
	}
	return NavigatorConfig{
		Outline:   DefaultOutlineConfig(),
		CacheSize: 64,
		Show:      show,
	}
}

// DefaultOutlineConfig returns the default extraction configuration.
func DefaultOutlineConfig() OutlineConfig {
	return OutlineConfig{
		MarkerAttribute:  "bl_idname",
		MaxPreviewLength: 50,
	}
}

// LoadNavigatorConfigFromEnv loads navigator configuration from
// environment variables. Supports the following variables:
//
// Outline:
//   - SCRIPTMAP_OUTLINE_MARKER_ATTRIBUTE: Class marker attribute (default: bl_idname)
//   - SCRIPTMAP_OUTLINE_PREVIEW_LENGTH: Value preview cap (default: 50)
//
// Tree:
//   - SCRIPTMAP_NAV_CACHE_SIZE: Outline cache entries (default: 64)
//   - SCRIPTMAP_NAV_SHOW_CLASS: Show classes (default: true)
//   - SCRIPTMAP_NAV_SHOW_FUNCTION: Show functions (default: true)
//   - SCRIPTMAP_NAV_SHOW_METHOD: Show methods (default: true)
//   - SCRIPTMAP_NAV_SHOW_PROPERTY: Show properties (default: true)
//   - SCRIPTMAP_NAV_SHOW_CONSTANT: Show constants (default: true)
//   - SCRIPTMAP_NAV_SHOW_VARIABLE: Show variables (default: true)
func LoadNavigatorConfigFromEnv() NavigatorConfig {
	cfg := DefaultNavigatorConfig()

	if v := os.Getenv("SCRIPTMAP_OUTLINE_MARKER_ATTRIBUTE"); v != "" {
		cfg.Outline.MarkerAttribute = v
	}
	if v := os.Getenv("SCRIPTMAP_OUTLINE_PREVIEW_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Outline.MaxPreviewLength = n
		}
	}
	if v := os.Getenv("SCRIPTMAP_NAV_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}

	for _, kind := range ShowKinds {
		env := "SCRIPTMAP_NAV_SHOW_" + strings.ToUpper(kind)
		if v := os.Getenv(env); v != "" {
			cfg.Show[kind] = parseBool(v, true)
		}
	}

	return cfg
}

// Validate checks that the navigator configuration is usable.
func (c NavigatorConfig) Validate() error {
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be >= 1, got %d", c.CacheSize)
	}
	if c.Outline.MaxPreviewLength < 1 {
		return fmt.Errorf("max_preview_length must be >= 1, got %d", c.Outline.MaxPreviewLength)
	}
	for kind := range c.Show {
		if !validShowKind(kind) {
			return fmt.Errorf("unknown show kind: %s", kind)
		}
	}
	return nil
}

func validShowKind(kind string) bool {
	for _, k := range ShowKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// WithCacheSize returns a copy of the config with the cache size set.
func (c NavigatorConfig) WithCacheSize(n int) NavigatorConfig {
	c.CacheSize = n
	return c
}

// WithShow returns a copy of the config with one kind's visibility set.
// The show map is cloned so the receiver is unchanged.
func (c NavigatorConfig) WithShow(kind string, visible bool) NavigatorConfig {
	show := make(map[string]bool, len(c.Show)+1)
	for k, v := range c.Show {
		show[k] = v
	}
	show[kind] = visible
	c.Show = show
	return c
}

// WithMarkerAttribute returns a copy of the config with the marker
// attribute set.
func (c OutlineConfig) WithMarkerAttribute(attr string) OutlineConfig {
	c.MarkerAttribute = attr
	return c
}

// WithMaxPreviewLength returns a copy of the config with the preview
// cap set.
func (c OutlineConfig) WithMaxPreviewLength(n int) OutlineConfig {
	c.MaxPreviewLength = n
	return c
}
