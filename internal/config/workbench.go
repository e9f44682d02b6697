package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Naming styles for packed add-on archives.
const (
	PackStyleName              = "name"
	PackStyleNameUnderscoreVer = "name_underscore_version"
	PackStyleNameDashVer       = "name_dash_version"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// WorkbenchConfig holds the editing-support configuration: occurrence
// highlighting, bookmarks, recent files, add-on packing, and storage.
type WorkbenchConfig struct {
	Occurrences OccurrenceConfig `yaml:"occurrences" json:"occurrences"`
	Bookmarks   BookmarkConfig   `yaml:"bookmarks" json:"bookmarks"`
	Recent      RecentConfig     `yaml:"recent" json:"recent"`
	Pack        PackConfig       `yaml:"pack" json:"pack"`
	Database    DatabaseConfig   `yaml:"database" json:"database"`
}

// OccurrenceConfig configures occurrence highlighting.
type OccurrenceConfig struct {
	// MinLength is the shortest selection that still highlights.
	// Selections below this length return no matches. Default: 2
	MinLength int `yaml:"min_length" json:"min_length"`

	// CaseSensitive matches occurrences exactly when true.
	// Default: false (case folded)
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// WholeWord restricts matches to word boundaries when the needle
	// itself is a bare word. Default: true
	WholeWord bool `yaml:"whole_word" json:"whole_word"`

	// MaxPerLine abandons the scan once a single line yields more
	// matches than this, keeping pathological buffers cheap.
	// Default: 1000
	MaxPerLine int `yaml:"max_per_line" json:"max_per_line"`
}

// BookmarkConfig configures bookmark tracking.
type BookmarkConfig struct {
	// SearchRadius is how many lines around a bookmark's last known
	// position are searched when buffer edits move it. Default: 5
	SearchRadius int `yaml:"search_radius" json:"search_radius"`
}

// RecentConfig configures the recent file list.
type RecentConfig struct {
	// Limit caps the list length; the oldest entries fall off.
	// Default: 30
	Limit int `yaml:"limit" json:"limit"`

	// ReorderOnOpen moves a reopened file back to the front.
	// When false an already listed file keeps its position. Default: true
	ReorderOnOpen bool `yaml:"reorder_on_open" json:"reorder_on_open"`

	// ShowFolderName lists package __init__.py files under their folder
	// name instead of the file name itself. Default: true
	ShowFolderName bool `yaml:"show_folder_name" json:"show_folder_name"`
}

// PackConfig configures add-on archive building.
type PackConfig struct {
	// NamingStyle selects the archive name format: "name",
	// "name_underscore_version", or "name_dash_version".
	// Default: "name"
	NamingStyle string `yaml:"naming_style" json:"naming_style"`

	// OutputDir receives built archives. Default: "." (working directory)
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DatabaseConfig configures persistent storage for bookmarks and the
// recent file list.
type DatabaseConfig struct {
	// Driver selects the storage backend ("sqlite" or "postgres").
	// Default: "sqlite"
	Driver string `yaml:"driver" json:"driver"`

	// Path is the sqlite database file. Default: ".scriptmap/scriptmap.db"
	Path string `yaml:"path" json:"path"`

	// DSN is the postgres connection string; ignored for sqlite.
	DSN string `yaml:"dsn" json:"dsn"`

	// EnableWAL turns on write-ahead logging for sqlite. Default: true
	EnableWAL bool `yaml:"enable_wal" json:"enable_wal"`
}

// DefaultWorkbenchConfig returns sensible defaults for every workbench
// feature.
func DefaultWorkbenchConfig() WorkbenchConfig {
	return WorkbenchConfig{
		Occurrences: DefaultOccurrenceConfig(),
		Bookmarks:   DefaultBookmarkConfig(),
		Recent:      DefaultRecentConfig(),
		Pack:        DefaultPackConfig(),
		Database:    DefaultDatabaseConfig(),
	}
}

// DefaultOccurrenceConfig returns the default occurrence settings.
// Matching is case folded and word bounded, which is what selection
// highlighting wants most of the time.
func DefaultOccurrenceConfig() OccurrenceConfig {
	return OccurrenceConfig{
		MinLength:     2,
		CaseSensitive: false,
		WholeWord:     true,
		MaxPerLine:    1000,
	}
}

// DefaultBookmarkConfig returns the default bookmark settings.
func DefaultBookmarkConfig() BookmarkConfig {
	return BookmarkConfig{
		SearchRadius: 5,
	}
}

// DefaultRecentConfig returns the default recent file settings.
func DefaultRecentConfig() RecentConfig {
	return RecentConfig{
		Limit:          30,
		ReorderOnOpen:  true,
		ShowFolderName: true,
	}
}

// DefaultPackConfig returns the default packing settings.
func DefaultPackConfig() PackConfig {
	return PackConfig{
		NamingStyle: PackStyleName,
		OutputDir:   ".",
	}
}

// DefaultDatabaseConfig returns the default storage settings.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:    DriverSQLite,
		Path:      ".scriptmap/scriptmap.db",
		EnableWAL: true,
	}
}

// LoadWorkbenchConfigFromEnv loads workbench configuration from
// environment variables. Supports the following variables:
//
// Occurrences:
//   - SCRIPTMAP_OCCUR_MIN_LENGTH: Shortest highlightable selection (default: 2)
//   - SCRIPTMAP_OCCUR_CASE_SENSITIVE: Exact-case matching (default: false)
//   - SCRIPTMAP_OCCUR_WHOLE_WORD: Word-boundary matching (default: true)
//   - SCRIPTMAP_OCCUR_MAX_PER_LINE: Per-line match cutoff (default: 1000)
//
// Bookmarks:
//   - SCRIPTMAP_BOOKMARK_SEARCH_RADIUS: Relocation search radius (default: 5)
//
// Recent files:
//   - SCRIPTMAP_RECENT_LIMIT: Max list length (default: 30)
//   - SCRIPTMAP_RECENT_REORDER: Move reopened files to front (default: true)
//   - SCRIPTMAP_RECENT_FOLDER_NAMES: List __init__.py under its folder name (default: true)
//
// Packing:
//   - SCRIPTMAP_PACK_NAMING_STYLE: Archive name format (default: name)
//   - SCRIPTMAP_PACK_OUTPUT_DIR: Archive output directory (default: .)
//
// Storage:
//   - SCRIPTMAP_DB_DRIVER: Backend driver, sqlite or postgres (default: sqlite)
//   - SCRIPTMAP_DB_PATH: SQLite database file (default: .scriptmap/scriptmap.db)
//   - SCRIPTMAP_DB_DSN: Postgres connection string
//   - SCRIPTMAP_DB_WAL: SQLite write-ahead logging (default: true)
func LoadWorkbenchConfigFromEnv() WorkbenchConfig {
	cfg := DefaultWorkbenchConfig()

	// Occurrence config
	if v := os.Getenv("SCRIPTMAP_OCCUR_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Occurrences.MinLength = n
		}
	}
	if v := os.Getenv("SCRIPTMAP_OCCUR_CASE_SENSITIVE"); v != "" {
		cfg.Occurrences.CaseSensitive = parseBool(v, false)
	}
	if v := os.Getenv("SCRIPTMAP_OCCUR_WHOLE_WORD"); v != "" {
		cfg.Occurrences.WholeWord = parseBool(v, true)
	}
	if v := os.Getenv("SCRIPTMAP_OCCUR_MAX_PER_LINE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Occurrences.MaxPerLine = n
		}
	}

	// Bookmark config
	if v := os.Getenv("SCRIPTMAP_BOOKMARK_SEARCH_RADIUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Bookmarks.SearchRadius = n
		}
	}

	// Recent file config
	if v := os.Getenv("SCRIPTMAP_RECENT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Recent.Limit = n
		}
	}
	if v := os.Getenv("SCRIPTMAP_RECENT_REORDER"); v != "" {
		cfg.Recent.ReorderOnOpen = parseBool(v, true)
	}
	if v := os.Getenv("SCRIPTMAP_RECENT_FOLDER_NAMES"); v != "" {
		cfg.Recent.ShowFolderName = parseBool(v, true)
	}

	// Pack config
	if v := os.Getenv("SCRIPTMAP_PACK_NAMING_STYLE"); v != "" {
		switch v {
		case PackStyleName, PackStyleNameUnderscoreVer, PackStyleNameDashVer:
			cfg.Pack.NamingStyle = v
		default:
			fmt.Fprintf(os.Stderr, "Warning: Unknown naming style %q, using %s\n", v, PackStyleName)
		}
	}
	if v := os.Getenv("SCRIPTMAP_PACK_OUTPUT_DIR"); v != "" {
		cfg.Pack.OutputDir = v
	}

	// Database config
	if v := os.Getenv("SCRIPTMAP_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SCRIPTMAP_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SCRIPTMAP_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SCRIPTMAP_DB_WAL"); v != "" {
		cfg.Database.EnableWAL = parseBool(v, true)
	}

	return cfg
}

// Validate checks that the pack configuration is valid.
func (c PackConfig) Validate() error {
	switch c.NamingStyle {
	case "", PackStyleName, PackStyleNameUnderscoreVer, PackStyleNameDashVer:
		// Valid
	default:
		return fmt.Errorf("invalid naming style: %s", c.NamingStyle)
	}
	return nil
}

// Validate checks that the database configuration is valid.
func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case "", DriverSQLite, DriverPostgres:
		// Valid
	default:
		return fmt.Errorf("invalid driver: %s", c.Driver)
	}
	if c.Driver == DriverPostgres && c.DSN == "" {
		return fmt.Errorf("postgres driver requires a DSN")
	}
	return nil
}

// parseBool parses a string as boolean with a default value.
func parseBool(s string, defaultVal bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1", "yes", "on", "enabled":
		return true
	case "false", "0", "no", "off", "disabled":
		return false
	default:
		return defaultVal
	}
}

// WithMinLength returns a copy of the config with the minimum
// selection length set.
func (c OccurrenceConfig) WithMinLength(n int) OccurrenceConfig {
	c.MinLength = n
	return c
}

// WithCaseSensitive returns a copy of the config with case
// sensitivity set.
func (c OccurrenceConfig) WithCaseSensitive(sensitive bool) OccurrenceConfig {
	c.CaseSensitive = sensitive
	return c
}

// WithWholeWord returns a copy of the config with word-boundary
// matching set.
func (c OccurrenceConfig) WithWholeWord(whole bool) OccurrenceConfig {
	c.WholeWord = whole
	return c
}

// WithLimit returns a copy of the config with the list limit set.
func (c RecentConfig) WithLimit(n int) RecentConfig {
	c.Limit = n
	return c
}

// WithNamingStyle returns a copy of the config with the naming style set.
func (c PackConfig) WithNamingStyle(style string) PackConfig {
	c.NamingStyle = style
	return c
}

// WithDriver returns a copy of the config with the driver set.
func (c DatabaseConfig) WithDriver(driver string) DatabaseConfig {
	c.Driver = driver
	return c
}

// Preferences is the complete persisted configuration surface: the
// navigator plus every workbench feature. Snapshots of this struct are
// what preference backups save and restore.
type Preferences struct {
	Navigator NavigatorConfig `yaml:"navigator" json:"navigator"`
	Workbench WorkbenchConfig `yaml:"workbench" json:"workbench"`
}

// DefaultPreferences returns the default preference set.
func DefaultPreferences() Preferences {
	return Preferences{
		Navigator: DefaultNavigatorConfig(),
		Workbench: DefaultWorkbenchConfig(),
	}
}

// LoadPreferencesFromEnv loads the full preference set from environment
// variables, falling back to defaults for anything unset.
func LoadPreferencesFromEnv() Preferences {
	return Preferences{
		Navigator: LoadNavigatorConfigFromEnv(),
		Workbench: LoadWorkbenchConfigFromEnv(),
	}
}
