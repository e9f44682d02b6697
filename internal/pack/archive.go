package pack

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
)

// fixedZipTime keeps archives byte-for-byte reproducible (1980-01-01 UTC).
var fixedZipTime = time.Unix(315532800, 0).UTC()

// Directories never worth shipping inside an add-on archive.
var skipDirs = map[string]bool{
	".git":        true,
	"__pycache__": true,
}

// Builder creates zip archives from add-on directories.
type Builder struct {
	cfg    config.PackConfig
	logger *slog.Logger
}

// New creates a Builder with the given configuration.
func New(cfg config.PackConfig) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logging.Default("pack"),
	}
}

// ArchiveName returns the zip file name for an add-on under the given
// naming style. A missing or unknown version always yields the bare
// name regardless of style.
func ArchiveName(info Info, style string) string {
	name := info.CleanName()
	version := strings.TrimSpace(info.Version)
	if version == "" || version == UnknownVersion {
		return name + ".zip"
	}
	switch style {
	case config.PackStyleNameUnderscoreVer:
		return name + "_" + version + ".zip"
	case config.PackStyleNameDashVer:
		return name + "-" + version + ".zip"
	}
	return name + ".zip"
}

// Pack zips the add-on rooted at info.Root into the configured output
// directory and returns the archive path. Entries are nested under the
// root's folder name, so unpacking recreates the add-on directory.
// Patterns from a .gitignore at the root are excluded, as are .git and
// __pycache__ directories.
func (b *Builder) Pack(info Info) (string, error) {
	if info.Root == "" {
		return "", fmt.Errorf("add-on has no root directory")
	}
	root, err := filepath.Abs(info.Root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", info.Root, err)
	}

	zipPath, err := b.archivePath(info)
	if err != nil {
		return "", err
	}
	excludes := loadExcludes(root)
	arcBase := filepath.Base(root)

	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(f)

	entries := 0
	// filepath.Walk visits names in lexical order, which keeps the
	// entry layout stable across runs.
	walkErr := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if rel != "." && skipDirs[fi.Name()] {
				return filepath.SkipDir
			}
			if excludes != nil && rel != "." && excludes.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		// The fresh archive may land inside the tree being walked.
		if path == zipPath {
			return nil
		}
		if excludes != nil && excludes.MatchesPath(rel) {
			return nil
		}
		if err := writeEntry(zw, sanitizeArcname(arcBase+"/"+rel), path); err != nil {
			return err
		}
		entries++
		return nil
	})

	if err := zw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := f.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(zipPath) //nolint:errcheck
		return "", fmt.Errorf("building archive: %w", walkErr)
	}

	b.logger.Info("packed add-on",
		"name", info.Name,
		"archive", zipPath,
		"entries", entries)
	return zipPath, nil
}

// PackScript zips a single script as a one-file add-on: the script
// becomes <clean name>/__init__.py inside the archive. Used when a
// standalone file carries bl_info but no surrounding package exists.
func (b *Builder) PackScript(scriptPath string, info Info) (string, error) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}

	zipPath, err := b.archivePath(info)
	if err != nil {
		return "", err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(f)

	arcname := sanitizeArcname(info.CleanName() + "/" + InitFile)
	writeErr := writeEntryBytes(zw, arcname, data)
	if err := zw.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		os.Remove(zipPath) //nolint:errcheck
		return "", fmt.Errorf("building archive: %w", writeErr)
	}

	b.logger.Info("packed script",
		"name", info.Name,
		"archive", zipPath)
	return zipPath, nil
}

// archivePath resolves and creates the output directory, returning the
// absolute path the archive will be written to.
func (b *Builder) archivePath(info Info) (string, error) {
	outDir := b.cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	abs, err := filepath.Abs(filepath.Join(outDir, ArchiveName(info, b.cfg.NamingStyle)))
	if err != nil {
		return "", fmt.Errorf("resolving archive path: %w", err)
	}
	return abs, nil
}

// loadExcludes compiles exclusion patterns from a .gitignore at the
// add-on root. Returns nil when no usable patterns exist.
func loadExcludes(root string) *ignore.GitIgnore {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// writeEntry adds one file to the archive with a fixed timestamp and
// mode so repeated builds produce identical bytes.
func writeEntry(zw *zip.Writer, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return writeEntryBytes(zw, name, data)
}

func writeEntryBytes(zw *zip.Writer, name string, data []byte) error {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}

// sanitizeArcname normalizes a zip entry path: forward slashes, no
// drive letter, no leading slash, and no '.' or '..' segments.
func sanitizeArcname(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}
