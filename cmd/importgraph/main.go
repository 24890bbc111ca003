package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"importgraph/internal/app"
	"importgraph/internal/config"
	"importgraph/internal/output"
	"importgraph/internal/shared/diag"
	"importgraph/internal/shared/observability"
	"importgraph/internal/watcher"
)

const VERSION = "1.0.0"

// stringList collects repeatable flag values.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

var (
	// Actions: the last one given wins, imports is the default.
	printImports = flag.Bool("imports", false, "Print dependency graph (default action)")
	printDot     = flag.Bool("dot", false, "Print dependency graph in dot format")
	printNames   = flag.Bool("names", false, "Print dependency graph with all imported names")
	printUnused  = flag.Bool("unused", false, "Print unused imports")
	printTSV     = flag.Bool("tsv", false, "Print dependency edges as tab-separated values")

	showAll        = flag.Bool("all", false, "Include unused imports annotated with a comment")
	warnDuplicates = flag.Bool("duplicate", false, "Warn about duplicate imports")
	ignoreStdlib   = flag.Bool("ignore-stdlib", false, "Ignore the Python standard library")
	verbose        = flag.Bool("verbose", false, "Print more information (currently only affects --duplicate)")
	noExternal     = flag.Bool("noext", false, "Omit external dependencies")

	condense         = flag.Bool("packages", false, "Convert the module graph to a package graph")
	condenseExternal = flag.Bool("package-externals", false, "Convert external modules to packages, keep own modules")
	packageLevel     = flag.Int("level", 0, "Collapse subpackages to the topmost Nth levels")
	collapseCycles   = flag.Bool("collapse", false, "Collapse dependency cycles")
	collapseTests    = flag.Bool("tests", false, "Collapse test packages with the modules they test")

	writeCache  = flag.String("write-cache", "", "Write analysis cache to a file for quicker subsequent runs")
	maxDepth    = flag.Int("depth", 0, "Import depth in ASTs (0 means unlimited)")
	configPath  = flag.String("config", "./importgraph.toml", "Path to config file")
	watchMode   = flag.Bool("watch", false, "Keep watching the tree and re-analyze on change")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	version     = flag.Bool("version", false, "Print version and exit")

	ignores    stringList
	rmPrefixes stringList
	dotAttrs   stringList
)

func main() {
	flag.Var(&ignores, "ignore", "Ignore a file or directory name (repeatable)")
	flag.Var(&rmPrefixes, "rmprefix", "Remove a module name prefix from the graph (repeatable)")
	flag.Var(&dotAttrs, "attr", "Add a graph attribute line to dot output (repeatable)")
	flag.Parse()

	if *version {
		fmt.Printf("importgraph v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	cfg.Ignore.Names = append(cfg.Ignore.Names, ignores...)
	rmPrefixes = append(stringList(cfg.RemovePrefixes), rmPrefixes...)
	if *metricsAddr != "" {
		cfg.Observability.MetricsAddr = *metricsAddr
	}
	if *writeCache == "" {
		*writeCache = cfg.Cache.Path
	}

	ctx := context.Background()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName:    "importgraph",
			ServiceVersion: VERSION,
			OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
			OTLPInsecure:   cfg.Observability.OTLPInsecure,
		})
		if err != nil {
			slog.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	warner := diag.NewWarner(os.Stderr)
	analyzer, err := app.New(cfg, app.Options{
		TrackUnused:    *printUnused,
		WarnDuplicates: *warnDuplicates,
		IgnoreStdlib:   *ignoreStdlib,
		Verbose:        *verbose,
		MaxDepth:       *maxDepth,
	}, warner)
	if err != nil {
		slog.Error("failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	if cfg.Observability.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Observability.MetricsAddr, func() map[string]any {
			return map[string]any{"modules": analyzer.Graph().Len()}
		})
		srv.Start()
		defer srv.Stop(ctx)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, path := range paths {
		if err := analyzer.ParsePathname(ctx, path); err != nil {
			slog.Error("analysis failed", "path", path, "error", err)
			os.Exit(1)
		}
	}

	if *writeCache != "" {
		if err := analyzer.SaveCache(*writeCache); err != nil {
			slog.Error("failed to write cache", "path", *writeCache, "error", err)
			os.Exit(1)
		}
	}

	render := func() {
		if err := renderGraph(analyzer, cfg); err != nil {
			slog.Error("failed to write output", "error", err)
			os.Exit(1)
		}
	}
	render()

	if !*watchMode {
		return
	}

	w, err := watcher.New(cfg.Watch.Debounce, cfg.Ignore.Names, func(changed []string) {
		analyzer.Reanalyze(changed)
		render()
	})
	if err != nil {
		slog.Error("failed to initialize watcher", "error", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := w.Watch(paths); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	select {}
}

// renderGraph applies the requested transforms and writes the selected
// report to stdout.
func renderGraph(analyzer *app.Analyzer, cfg *config.Config) error {
	g := analyzer.Graph()

	if *condense || *condenseExternal {
		g = g.PackageGraph(analyzer.Resolver(), *packageLevel, *condenseExternal)
	}
	if *collapseTests {
		g = g.CollapseTests(cfg.Tests.Packages)
	}
	if *collapseCycles {
		g = g.CollapseCycles()
	}
	if len(rmPrefixes) > 0 {
		g = g.RemovePrefixes(rmPrefixes)
	}

	switch {
	case *printImports:
		return output.WriteImports(os.Stdout, g, !*noExternal)
	case *printDot:
		return output.WriteDot(os.Stdout, g, dotAttrs, !*noExternal)
	case *printNames:
		return output.WriteImportedNames(os.Stdout, g)
	case *printUnused:
		return output.WriteUnused(os.Stdout, g, *showAll)
	case *printTSV:
		return output.WriteTSV(os.Stdout, g)
	default:
		return output.WriteImports(os.Stdout, g, !*noExternal)
	}
}
