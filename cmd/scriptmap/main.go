package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"scriptmap/internal/bookmark"
	"scriptmap/internal/config"
	"scriptmap/internal/db"
	"scriptmap/internal/definition"
	"scriptmap/internal/findreplace"
	"scriptmap/internal/logging"
	"scriptmap/internal/navigator"
	"scriptmap/internal/occur"
	"scriptmap/internal/pack"
	"scriptmap/internal/prefs"
	"scriptmap/internal/recent"
	"scriptmap/internal/session"
	"scriptmap/internal/textops"
	"scriptmap/internal/watch"
)

var logger *slog.Logger

const version = "0.2.0"

func main() {
	logger = logging.Default("scriptmap")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "outline":
		runOutline(os.Args[2:])

	case "search":
		runSearch(os.Args[2:])

	case "definition":
		runDefinition(os.Args[2:])

	case "replace":
		runReplace(os.Args[2:])

	case "tidy":
		runTidy(os.Args[2:])

	case "count":
		runCount(os.Args[2:])

	case "case":
		runCase(os.Args[2:])

	case "bookmarks":
		runBookmarks(os.Args[2:])

	case "recent":
		runRecent(os.Args[2:])

	case "pack":
		runPack(os.Args[2:])

	case "watch":
		runWatch(os.Args[2:])

	case "prefs":
		runPrefs(os.Args[2:])

	case "version":
		fmt.Printf("scriptmap v%s\n", version)

	case "help", "-h", "--help":
		printUsage()

	default:
		logger.Error("unknown command", "command", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runOutline(args []string) {
	fs := flag.NewFlagSet("outline", flag.ExitOnError)
	search := fs.String("search", "", "Filter declarations by name")
	fs.StringVar(search, "s", "", "Short for --search")
	cursor := fs.Int("cursor", 0, "1-indexed cursor line for the active marker")
	fs.IntVar(cursor, "c", 0, "Short for --cursor")
	collapsed := fs.Bool("collapsed", false, "Render containers collapsed")
	jsonOutput := fs.Bool("json", false, "Output rows as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("outline requires a file")
		os.Exit(1)
	}
	doc, _ := openDocument(fs.Arg(0))

	cfg := config.LoadPreferencesFromEnv()
	nav, err := navigator.New(cfg.Navigator)
	if err != nil {
		logger.Error("creating navigator failed", "error", err)
		os.Exit(1)
	}

	o := nav.Outline(context.Background(), doc.Name(), doc.Text())
	rows := nav.Render(o, navigator.View{
		Search:     *search,
		CursorLine: *cursor,
		ExpandAll:  !*collapsed,
	})

	if *jsonOutput {
		if rows == nil {
			rows = []navigator.Row{}
		}
		printJSON(rows)
		return
	}
	if len(rows) == 0 {
		fmt.Println(navigator.EmptyMessage(*search))
		return
	}
	printRows(rows)
}

// printRows renders the navigation tree the way the panel draws it:
// active marker, line number, depth indent, expand marker, label.
func printRows(rows []navigator.Row) {
	for _, row := range rows {
		marker := "  "
		if row.Expandable {
			marker = "- "
			if !row.Expanded {
				marker = "+ "
			}
		}
		active := " "
		if row.Active {
			active = ">"
		}
		fmt.Printf("%s%5d  %s%s%s\n", active, row.Line, strings.Repeat("  ", row.Depth), marker, row.Label)
	}
}

func runSearch(args []string) {
	cfg := config.LoadPreferencesFromEnv()
	occCfg := cfg.Workbench.Occurrences

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	word := fs.Bool("word", occCfg.WholeWord, "Match whole words only")
	fs.BoolVar(word, "w", occCfg.WholeWord, "Short for --word")
	matchCase := fs.Bool("case", occCfg.CaseSensitive, "Match case exactly")
	fs.BoolVar(matchCase, "c", occCfg.CaseSensitive, "Short for --case")
	jsonOutput := fs.Bool("json", false, "Output matches as JSON")
	fs.Parse(args)

	if fs.NArg() < 2 {
		logger.Error("search requires a file and text")
		os.Exit(1)
	}
	doc, _ := openDocument(fs.Arg(0))
	needle := fs.Arg(1)

	h := occur.New(occCfg.WithWholeWord(*word).WithCaseSensitive(*matchCase))
	matches := h.Find(doc, needle)

	if *jsonOutput {
		if matches == nil {
			matches = []occur.Match{}
		}
		printJSON(matches)
		return
	}
	if len(matches) == 0 {
		fmt.Println(findreplace.MsgNoMatches)
		return
	}
	for _, m := range matches {
		line, _ := doc.Line(m.Line)
		fmt.Printf("%s:%d:%d: %s\n", fs.Arg(0), m.Line, m.Start+1, line)
	}
	fmt.Printf("%d occurrences\n", len(matches))
}

func runDefinition(args []string) {
	fs := flag.NewFlagSet("definition", flag.ExitOnError)
	line := fs.Int("line", 1, "1-indexed cursor line")
	fs.IntVar(line, "l", 1, "Short for --line")
	col := fs.Int("col", 0, "0-indexed cursor column")
	word := fs.String("word", "", "Identifier to look up instead of the word under the cursor")
	fs.StringVar(word, "w", "", "Short for --word")
	listAll := fs.Bool("all", false, "List every binding site")
	fs.BoolVar(listAll, "a", false, "Short for --all")
	jsonOutput := fs.Bool("json", false, "Output the site as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("definition requires a file")
		os.Exit(1)
	}
	doc, _ := openDocument(fs.Arg(0))
	doc.SetCursor(session.Position{Line: *line, Char: *col})

	target := *word
	if target == "" {
		target = doc.WordAt(doc.Cursor())
	}
	if target == "" {
		logger.Error("no identifier under the cursor", "line", *line, "col", *col)
		os.Exit(1)
	}

	sites := definition.Collect(context.Background(), doc.Text(), target)

	if *listAll {
		if *jsonOutput {
			if sites == nil {
				sites = []definition.Site{}
			}
			printJSON(sites)
			return
		}
		if len(sites) == 0 {
			fmt.Printf("No definition of %q found\n", target)
			return
		}
		for _, s := range sites {
			fmt.Printf("%s:%d:%d: %s (%s)\n", fs.Arg(0), s.Line, s.Column+1, s.Name, s.Kind)
		}
		return
	}

	site, ok := definition.Resolve(sites, *line)
	if !ok {
		logger.Error("no definition found", "word", target)
		os.Exit(1)
	}
	if *jsonOutput {
		printJSON(site)
		return
	}
	fmt.Printf("%s:%d:%d: %s (%s)\n", fs.Arg(0), site.Line, site.Column+1, site.Name, site.Kind)
}

func runReplace(args []string) {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	all := fs.Bool("all", false, "Replace every occurrence")
	fs.BoolVar(all, "a", false, "Short for --all")
	matchCase := fs.Bool("case", false, "Match case exactly")
	fs.BoolVar(matchCase, "c", false, "Short for --case")
	noWrap := fs.Bool("no-wrap", false, "Do not wrap past the end of the buffer")
	write := fs.Bool("write", false, "Write the result back to the file")
	fs.BoolVar(write, "w", false, "Short for --write")
	jsonOutput := fs.Bool("json", false, "Output the result as JSON")
	fs.Parse(args)

	if fs.NArg() < 3 {
		logger.Error("replace requires a file, search text, and replacement")
		os.Exit(1)
	}
	doc, absPath := openDocument(fs.Arg(0))
	needle, replacement := fs.Arg(1), fs.Arg(2)

	opts := findreplace.Options{MatchCase: *matchCase, Wrap: !*noWrap}
	replaced := 0
	if *all {
		replaced = findreplace.ReplaceAll(doc, needle, replacement, opts)
	} else {
		// The first find selects, the replace consumes the selection.
		if _, ok := findreplace.Next(doc, needle, opts); ok &&
			findreplace.ReplaceOne(doc, needle, replacement, opts) {
			replaced = 1
		}
	}

	written := false
	if replaced > 0 && *write {
		if err := os.WriteFile(absPath, []byte(doc.Text()), fileMode(absPath)); err != nil {
			logger.Error("writing file failed", "error", err)
			os.Exit(1)
		}
		written = true
	}

	if *jsonOutput {
		printJSON(struct {
			Replaced int  `json:"replaced"`
			Written  bool `json:"written"`
		}{replaced, written})
		return
	}
	switch {
	case replaced == 0:
		fmt.Println(findreplace.MsgNoMatches)
	case written:
		fmt.Printf("%s: replaced %d\n", fs.Arg(0), replaced)
	default:
		fmt.Printf("%s: replaced %d (dry run, pass --write to save)\n", fs.Arg(0), replaced)
	}
}

func runTidy(args []string) {
	fs := flag.NewFlagSet("tidy", flag.ExitOnError)
	write := fs.Bool("write", false, "Rewrite files in place")
	fs.BoolVar(write, "w", false, "Short for --write")
	check := fs.Bool("check", false, "Exit 1 when a file has trailing whitespace")
	jsonOutput := fs.Bool("json", false, "Output per-file results as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("tidy requires at least one file")
		os.Exit(1)
	}

	type report struct {
		Path    string `json:"path"`
		Removed int    `json:"removed"`
	}
	var reports []report
	var dirtyPaths []string

	for _, path := range fs.Args() {
		absPath, err := filepath.Abs(path)
		if err != nil {
			logger.Error("invalid path", "path", path, "error", err)
			os.Exit(1)
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			logger.Error("reading file failed", "path", path, "error", err)
			os.Exit(1)
		}

		lines, removed := textops.TrimTrailing(strings.Split(string(content), "\n"))
		reports = append(reports, report{Path: path, Removed: removed})
		if removed == 0 {
			continue
		}
		dirtyPaths = append(dirtyPaths, path)

		if *write && !*check {
			if err := os.WriteFile(absPath, []byte(strings.Join(lines, "\n")), fileMode(absPath)); err != nil {
				logger.Error("writing file failed", "path", path, "error", err)
				os.Exit(1)
			}
		}
	}

	if *jsonOutput {
		printJSON(reports)
		if *check && len(dirtyPaths) > 0 {
			os.Exit(1)
		}
		return
	}
	if *check {
		for _, path := range dirtyPaths {
			fmt.Println(path)
		}
		if len(dirtyPaths) > 0 {
			os.Exit(1)
		}
		return
	}
	for _, r := range reports {
		if r.Removed > 0 {
			fmt.Printf("%s: %d trailing characters removed\n", r.Path, r.Removed)
		}
	}
	if len(dirtyPaths) == 0 {
		fmt.Println("Nothing to trim")
	} else if !*write {
		fmt.Println("Dry run, pass --write to save")
	}
}

func runCount(args []string) {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	line := fs.Int("line", 1, "1-indexed cursor line")
	fs.IntVar(line, "l", 1, "Short for --line")
	col := fs.Int("col", 0, "0-indexed cursor column")
	jsonOutput := fs.Bool("json", false, "Output counts as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("count requires a file")
		os.Exit(1)
	}
	doc, _ := openDocument(fs.Arg(0))
	doc.SetCursor(session.Position{Line: *line, Char: *col})

	counts := textops.Count(doc)
	if *jsonOutput {
		printJSON(counts)
		return
	}
	fmt.Println(counts.Summary())
	fmt.Println(counts.Position())
}

func runCase(args []string) {
	fs := flag.NewFlagSet("case", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		logger.Error("case requires a style and text")
		os.Exit(1)
	}
	style, err := textops.ParseCaseStyle(fs.Arg(0))
	if err != nil {
		logger.Error("invalid case style", "error", err)
		os.Exit(1)
	}
	out, err := textops.Convert(strings.Join(fs.Args()[1:], " "), style)
	if err != nil {
		logger.Error("converting case failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func runBookmarks(args []string) {
	fs := flag.NewFlagSet("bookmarks", flag.ExitOnError)
	add := fs.Int("add", 0, "Bookmark this 1-indexed line")
	remove := fs.Int("remove", 0, "Remove the bookmark with this list number")
	sortFlag := fs.Bool("sort", false, "Sort bookmarks by line")
	clear := fs.Bool("clear", false, "Remove every bookmark")
	jsonOutput := fs.Bool("json", false, "Output bookmarks as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("bookmarks requires a file")
		os.Exit(1)
	}
	doc, absPath := openDocument(fs.Arg(0))

	cfg := config.LoadPreferencesFromEnv()
	database, dialect := openDatabase(cfg.Workbench.Database)
	defer database.Close()

	ctx := context.Background()
	store := bookmark.NewStore(database, dialect)
	if err := store.Init(ctx); err != nil {
		logger.Error("preparing bookmark store failed", "error", err)
		os.Exit(1)
	}
	items, err := store.Load(ctx, absPath)
	if err != nil {
		logger.Error("loading bookmarks failed", "error", err)
		os.Exit(1)
	}

	list := bookmark.New(cfg.Workbench.Bookmarks)
	list.SetItems(items)
	// Relocate bookmarks the file may have outgrown since the last run.
	dirty := list.Refresh(doc)

	switch {
	case *clear:
		list.SetItems(nil)
		dirty = true
	case *add > 0:
		landed := textops.JumpToLine(doc, *add)
		if list.Add(doc) {
			dirty = true
		} else {
			logger.Warn("line already bookmarked", "line", landed)
		}
	case *remove > 0:
		if list.Remove(*remove - 1) {
			dirty = true
		} else {
			logger.Error("no bookmark with that number", "number", *remove)
			os.Exit(1)
		}
	}
	if *sortFlag && list.Sort(doc) {
		dirty = true
	}

	if dirty {
		if err := store.Save(ctx, absPath, list.Items()); err != nil {
			logger.Error("saving bookmarks failed", "error", err)
			os.Exit(1)
		}
	}

	if *jsonOutput {
		items := list.Items()
		if items == nil {
			items = []bookmark.Item{}
		}
		printJSON(items)
		return
	}
	if list.Len() == 0 {
		fmt.Println("No bookmarks")
		return
	}
	for i, it := range list.Items() {
		fmt.Printf("%3d  %s\n", i+1, it.Label())
	}
}

func runRecent(args []string) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	add := fs.String("add", "", "Record a file as just opened")
	remove := fs.String("remove", "", "Drop a file from the list")
	prune := fs.Bool("prune", false, "Drop entries whose file no longer exists")
	clear := fs.Bool("clear", false, "Empty the list")
	jsonOutput := fs.Bool("json", false, "Output the list as JSON")
	fs.Parse(args)

	cfg := config.LoadPreferencesFromEnv()
	database, dialect := openDatabase(cfg.Workbench.Database)
	defer database.Close()

	ctx := context.Background()
	store := recent.NewStore(database, dialect)
	if err := store.Init(ctx); err != nil {
		logger.Error("preparing recent store failed", "error", err)
		os.Exit(1)
	}
	paths, err := store.Load(ctx)
	if err != nil {
		logger.Error("loading recent files failed", "error", err)
		os.Exit(1)
	}

	list := recent.New(cfg.Workbench.Recent)
	list.SetPaths(paths)

	dirty := false
	switch {
	case *clear:
		if list.Len() > 0 {
			list.Clear()
			dirty = true
		}
	case *add != "":
		dirty = list.Reopen(*add)
	case *remove != "":
		dirty = list.Remove(*remove)
	case *prune:
		if n := list.PruneMissing(); n > 0 {
			fmt.Printf("Pruned %d entries\n", n)
			dirty = true
		}
	}

	if dirty {
		if err := store.Save(ctx, list.Paths()); err != nil {
			logger.Error("saving recent files failed", "error", err)
			os.Exit(1)
		}
	}

	valid, missing := list.Partition()
	if *jsonOutput {
		if valid == nil {
			valid = []recent.Entry{}
		}
		if missing == nil {
			missing = []recent.Entry{}
		}
		printJSON(struct {
			Valid   []recent.Entry `json:"valid"`
			Missing []recent.Entry `json:"missing"`
		}{valid, missing})
		return
	}
	if list.Len() == 0 {
		fmt.Println("No recent files")
		return
	}
	for _, e := range valid {
		fmt.Printf("%-24s %s\n", e.Name, e.Path)
	}
	for _, e := range missing {
		fmt.Printf("%-24s %s (missing)\n", e.Name, e.Path)
	}
}

func runPack(args []string) {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	output := fs.String("output", "", "Archive output directory")
	fs.StringVar(output, "o", "", "Short for --output")
	style := fs.String("style", "", "Archive naming style")
	jsonOutput := fs.Bool("json", false, "Output the result as JSON")
	fs.Parse(args)

	path := "."
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Error("invalid path", "error", err)
		os.Exit(1)
	}

	cfg := config.LoadPreferencesFromEnv().Workbench.Pack
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *style != "" {
		cfg = cfg.WithNamingStyle(*style)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid pack config", "error", err)
		os.Exit(1)
	}

	builder := pack.New(cfg)

	var archive string
	info, err := pack.FindRoot(absPath)
	switch {
	case err == nil:
		archive, err = builder.Pack(info)
	case strings.HasSuffix(absPath, ".py"):
		// A loose script with no add-on root around it packs alone.
		info = scriptInfo(absPath)
		archive, err = builder.PackScript(absPath, info)
	default:
		logger.Error("locating add-on root failed", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("packing failed", "error", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(struct {
			pack.Info
			Archive string `json:"archive"`
		}{info, archive})
		return
	}
	fmt.Println(archive)
}

// scriptInfo derives packing metadata for a standalone script: its
// bl_info block when present, the file name otherwise.
func scriptInfo(path string) pack.Info {
	if content, err := os.ReadFile(path); err == nil {
		if info, ok := pack.ParseBlInfo(string(content)); ok {
			return info
		}
	}
	return pack.Info{
		Name:    strings.TrimSuffix(filepath.Base(path), ".py"),
		Version: pack.UnknownVersion,
		Kind:    pack.KindAddon,
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("watch requires at least one file")
		os.Exit(1)
	}

	cfg := config.LoadPreferencesFromEnv()
	nav, err := navigator.New(cfg.Navigator)
	if err != nil {
		logger.Error("creating navigator failed", "error", err)
		os.Exit(1)
	}

	sess := session.New()
	watcher, err := watch.New(sess, nav)
	if err != nil {
		logger.Error("creating watcher failed", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	for _, path := range fs.Args() {
		absPath, err := filepath.Abs(path)
		if err != nil {
			logger.Error("invalid path", "path", path, "error", err)
			os.Exit(1)
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			logger.Error("reading file failed", "path", path, "error", err)
			os.Exit(1)
		}
		doc := sess.Open(absPath, string(content))
		if err := watcher.Track(absPath, doc); err != nil {
			logger.Error("watching file failed", "path", path, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %d files. Press Ctrl-C to stop.\n", len(watcher.Paths()))
	watcher.Run(ctx)
}

func runPrefs(args []string) {
	fs := flag.NewFlagSet("prefs", flag.ExitOnError)
	save := fs.Bool("save", false, "Write a preferences backup")
	restore := fs.Bool("restore", false, "Apply the stored backup and print the merged settings")
	deleteFlag := fs.Bool("delete", false, "Remove the stored backup")
	dir := fs.String("dir", ".scriptmap", "Backup directory")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Parse(args)

	store := prefs.NewStore(*dir)
	current := config.LoadPreferencesFromEnv()

	switch {
	case *save:
		if err := store.Save(current, nil); err != nil {
			logger.Error("saving backup failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Saved preferences backup to %s\n", store.Path())

	case *restore:
		backup, err := store.Load()
		if err != nil {
			logger.Error("loading backup failed", "error", err)
			os.Exit(1)
		}
		if backup == nil {
			logger.Error("no backup found", "path", store.Path())
			os.Exit(1)
		}
		merged, count, err := backup.Restore(current)
		if err != nil {
			logger.Error("restoring backup failed", "error", err)
			os.Exit(1)
		}
		if *jsonOutput {
			printJSON(merged)
			return
		}
		fmt.Printf("Restored %d settings from %s\n", count, store.Path())

	case *deleteFlag:
		if err := store.Delete(); err != nil {
			logger.Error("deleting backup failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("Deleted preferences backup")

	default:
		status := struct {
			Path   string `json:"path"`
			Exists bool   `json:"exists"`
			Saved  string `json:"saved,omitempty"`
			InSync bool   `json:"in_sync"`
		}{Path: store.Path(), Exists: store.Exists()}
		if status.Exists {
			if mod, ok := store.ModTime(); ok {
				status.Saved = mod.Format(time.RFC3339)
			}
			status.InSync = !store.Differs(current, nil)
		}
		if *jsonOutput {
			printJSON(status)
			return
		}
		if !status.Exists {
			fmt.Println("No preferences backup")
			return
		}
		fmt.Printf("Backup: %s\n", status.Path)
		fmt.Printf("Saved: %s\n", status.Saved)
		fmt.Printf("In sync: %v\n", status.InSync)
	}
}

// openDocument loads path into a fresh single-document session.
func openDocument(path string) (*session.Document, string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Error("invalid path", "path", path, "error", err)
		os.Exit(1)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		logger.Error("reading file failed", "path", path, "error", err)
		os.Exit(1)
	}
	return session.New().Open(absPath, string(content)), absPath
}

// openDatabase opens the storage backend named by the config.
func openDatabase(cfg config.DatabaseConfig) (db.DB, db.Dialect) {
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	dbCfg := db.Config{Path: cfg.Path, DSN: cfg.DSN, EnableWAL: cfg.EnableWAL}
	if cfg.Driver == config.DriverPostgres {
		dbCfg.Driver = db.DriverPostgres
	} else {
		dbCfg.Driver = db.DriverModernc
	}

	database, err := db.Open(dbCfg)
	if err != nil {
		logger.Error("opening database failed", "error", err)
		os.Exit(1)
	}

	dialect := dbCfg.Dialect()
	schema := db.NewSchemaBuilder(database, dialect)
	if err := schema.RunInitStatements(context.Background()); err != nil {
		logger.Error("initializing database failed", "error", err)
		database.Close()
		os.Exit(1)
	}
	return database, dialect
}

// fileMode returns the file's current permissions, or 0644 for new files.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode()
	}
	return 0o644
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("encoding JSON failed", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scriptmap - Python source outline and editing toolkit

Usage:
  scriptmap outline [options] <file>              Print the navigation tree
  scriptmap search [options] <file> <text>        List occurrences of text
  scriptmap definition [options] <file>           Resolve an identifier's definition
  scriptmap replace [options] <file> <old> <new>  Find and replace in a buffer
  scriptmap tidy [options] <file...>              Trim trailing whitespace
  scriptmap count [options] <file>                Buffer statistics
  scriptmap case <style> <text>                   Convert text case
  scriptmap bookmarks [options] <file>            List or edit line bookmarks
  scriptmap recent [options]                      Show the recent file list
  scriptmap pack [options] <path>                 Zip an add-on for installation
  scriptmap watch <file...>                       Reload files when they change on disk
  scriptmap prefs [options]                       Back up or restore preferences
  scriptmap version                               Print version
  scriptmap help                                  Show this help

Outline Options:
  --search, -s   Filter declarations by name (case-insensitive)
  --cursor, -c   1-indexed cursor line for the active marker
  --collapsed    Render containers collapsed
  --json         Output rows as JSON

Search Options:
  --word, -w     Match whole words only
  --case, -c     Match case exactly
  --json         Output matches as JSON

Definition Options:
  --line, -l     1-indexed cursor line (default: 1)
  --col          0-indexed cursor column (default: 0)
  --word, -w     Look up this identifier instead of the word under the cursor
  --all, -a      List every binding site
  --json         Output the site as JSON

Replace Options:
  --all, -a      Replace every occurrence
  --case, -c     Match case exactly
  --no-wrap      Do not wrap past the end of the buffer
  --write, -w    Write the result back to the file
  --json         Output the result as JSON

Tidy Options:
  --write, -w    Rewrite files in place
  --check        Print files needing a trim and exit 1
  --json         Output per-file results as JSON

Bookmark Options:
  --add          Bookmark this 1-indexed line
  --remove       Remove the bookmark with this list number
  --sort         Sort bookmarks by line
  --clear        Remove every bookmark
  --json         Output bookmarks as JSON

Recent Options:
  --add          Record a file as just opened
  --remove       Drop a file from the list
  --prune        Drop entries whose file no longer exists
  --clear        Empty the list
  --json         Output the list as JSON

Pack Options:
  --output, -o   Archive output directory (default: .)
  --style        Archive naming: name, name_underscore_version, name_dash_version
  --json         Output the result as JSON

Prefs Options:
  --save         Write a preferences backup
  --restore      Apply the stored backup and report the merged settings
  --delete       Remove the stored backup
  --dir          Backup directory (default: .scriptmap)
  --json         Output as JSON

Case Styles:
  upper, lower, title, capitalize, snake, camel

Environment Variables:
  SCRIPTMAP_OUTLINE_MARKER_ATTRIBUTE   Class marker attribute [default: bl_idname]
  SCRIPTMAP_OUTLINE_PREVIEW_LENGTH     Assignment preview cap [default: 50]
  SCRIPTMAP_NAV_CACHE_SIZE             Outline cache entries [default: 64]
  SCRIPTMAP_NAV_SHOW_<KIND>            Toggle class/function/method/property/constant/variable rows
  SCRIPTMAP_OCCUR_MIN_LENGTH           Shortest searchable text [default: 2]
  SCRIPTMAP_RECENT_LIMIT               Recent list length [default: 30]
  SCRIPTMAP_PACK_NAMING_STYLE          Default archive naming [default: name]
  SCRIPTMAP_DB_DRIVER                  Storage driver: sqlite (default), postgres
  SCRIPTMAP_DB_PATH                    SQLite file [default: .scriptmap/scriptmap.db]
  SCRIPTMAP_DB_DSN                     Postgres connection string
  SCRIPTMAP_LOG_LEVEL                  Log level (debug, info, warn, error) [default: info]
  SCRIPTMAP_LOG_FORMAT                 Log format (text, json) [default: text]

Database:
  Bookmarks and the recent file list persist to SQLite in .scriptmap/
  by default. Set SCRIPTMAP_DB_DRIVER=postgres and SCRIPTMAP_DB_DSN to
  share them through a PostgreSQL server.

Examples:
  scriptmap outline --search draw addon/ui.py
  scriptmap definition --line 120 --col 8 addon/ops.py
  scriptmap replace --all --write addon/ops.py old_name new_name
  scriptmap bookmarks --add 42 addon/ops.py
  scriptmap pack --style name_dash_version addon/`)
}
