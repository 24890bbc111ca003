package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"importgraph/internal/cache"
	"importgraph/internal/config"
	"importgraph/internal/graph"
	"importgraph/internal/parser"
	"importgraph/internal/resolver"
	"importgraph/internal/shared/diag"
	"importgraph/internal/shared/observability"
	"importgraph/internal/walker"
)

// CacheSuffix marks a pathname argument as a saved graph rather than a
// source tree.
const CacheSuffix = ".importcache"

// Options selects what the analyzer records beyond the dependency edges.
type Options struct {
	// TrackUnused enables scope tracking so modules carry unused-import
	// records.
	TrackUnused bool

	// WarnDuplicates reports redundant imports of an already-bound name
	// instead of tracking usage.
	WarnDuplicates bool

	// IgnoreStdlib drops imports of standard-library modules.
	IgnoreStdlib bool

	// Verbose adds detail to duplicate-import warnings.
	Verbose bool

	// MaxDepth bounds the syntax-tree descent. Zero means the parser
	// default.
	MaxDepth int
}

// Analyzer drives the pipeline: enumerate sources, extract imports, resolve
// targets, and accumulate the module graph.
type Analyzer struct {
	cfg    *config.Config
	opts   Options
	parser *parser.Parser
	res    *resolver.Resolver
	walk   *walker.Walker
	warner *diag.Warner
	graph  *graph.ModuleGraph
}

func New(cfg *config.Config, opts Options, warner *diag.Warner) (*Analyzer, error) {
	table := resolver.DefaultTable()
	if cfg.StdlibTable != "" {
		var err error
		table, err = resolver.LoadTable(cfg.StdlibTable)
		if err != nil {
			return nil, err
		}
	}

	w, err := walker.New(cfg.Ignore.Names)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		cfg:  cfg,
		opts: opts,
		parser: parser.NewParser(),
		res: resolver.New(resolver.Options{
			Path:       cfg.SearchPath,
			Extensions: cfg.Extensions,
			Table:      table,
			Warner:     warner,
		}),
		walk:   w,
		warner: warner,
		graph:  graph.New(),
	}, nil
}

func (a *Analyzer) Graph() *graph.ModuleGraph {
	return a.graph
}

func (a *Analyzer) Resolver() *resolver.Resolver {
	return a.res
}

// ParsePathname analyzes one command-line argument: a directory tree, a
// single source file, or a saved graph.
func (a *Analyzer) ParsePathname(ctx context.Context, pathname string) error {
	ctx, span := observability.Tracer.Start(ctx, "analyze")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(start).Seconds())
	}()

	if strings.HasSuffix(pathname, CacheSuffix) {
		return a.LoadCache(pathname)
	}

	files, err := a.sources(pathname)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.parseAndReport(file)
	}
	return nil
}

// parseAndReport parses one file, reporting failures without aborting the
// pass. Syntax errors go to the warner so each file is reported once.
func (a *Analyzer) parseAndReport(file string) {
	err := a.ParseFile(file)
	switch {
	case err == nil:
	case errors.Is(err, parser.ErrSyntax):
		a.warner.Warn("syntax:"+file, "%s: syntax error", file)
	default:
		slog.Warn("failed to parse file", "path", file, "error", err)
	}
}

func (a *Analyzer) sources(pathname string) ([]string, error) {
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{pathname}, nil
	}
	return a.walk.FindSources(pathname)
}

// ParseFile analyzes a single source file and records its module in the
// graph, replacing any previous entry for the same module.
func (a *Analyzer) ParseFile(filename string) error {
	modname := a.res.FilenameToModname(filename)
	mod := graph.NewModule(modname, filename)

	imported, unused, err := a.parser.ParseFile(filename, parser.Options{
		TrackUnused:    a.opts.TrackUnused,
		WarnDuplicates: a.opts.WarnDuplicates,
		Verbose:        a.opts.Verbose,
		MaxDepth:       a.opts.MaxDepth,
		Warner:         a.warner,
	})
	if err != nil {
		return err
	}

	// Only the imported list is filtered; the unused report still covers
	// standard-library imports.
	if a.opts.IgnoreStdlib {
		imported = a.dropStdlib(imported)
	}
	mod.ImportedNames = imported
	mod.UnusedNames = unused

	dir := filepath.Dir(filename)
	for _, rec := range imported {
		mod.AddImport(a.res.FindModuleOf(rec.Name, rec.Level, filename, dir))
	}

	a.graph.Add(mod)
	return nil
}

func (a *Analyzer) dropStdlib(records []parser.ImportRecord) []parser.ImportRecord {
	kept := records[:0]
	for _, rec := range records {
		if rec.Level == 0 && a.res.Table().Contains(rec.Name) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// Reanalyze re-parses changed files, used by watch mode. Deleted files keep
// their last known entry until the next full run.
func (a *Analyzer) Reanalyze(paths []string) {
	start := time.Now()
	for _, path := range paths {
		a.parseAndReport(path)
	}
	observability.AnalysisDuration.WithLabelValues("reanalyze").Observe(time.Since(start).Seconds())
	slog.Info("re-analyzed changed files", "count", len(paths), "modules", a.graph.Len())
}

// LoadCache merges a previously saved graph into the current one.
func (a *Analyzer) LoadCache(path string) error {
	store, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	loaded, err := store.Load()
	if err != nil {
		return err
	}
	for _, mod := range loaded.List() {
		a.graph.Add(mod)
	}
	slog.Debug("loaded graph cache", "path", path, "modules", loaded.Len())
	return nil
}

// SaveCache persists the current graph next to the analyzed tree.
func (a *Analyzer) SaveCache(path string) error {
	store, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(a.graph)
}
