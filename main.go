package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olehluchkiv/javadeps/internal/analysis"
	"github.com/olehluchkiv/javadeps/internal/config"
	"github.com/olehluchkiv/javadeps/internal/diagram"
	"github.com/olehluchkiv/javadeps/internal/export"
	"github.com/olehluchkiv/javadeps/internal/logging"
	"github.com/olehluchkiv/javadeps/internal/report"
	"github.com/olehluchkiv/javadeps/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the flag values that are not part of config.Config.
type options struct {
	configPath string
	filter     string
	noJDK      bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "javadeps [root]",
		Short: "Extract type metadata and a dependency graph from Java sources",
		Long: `javadeps scans a tree of Java sources (a directory or a git URL),
resolves type references across files and prints a per-type report followed
by a deduplicated type dependency graph in DOT or Mermaid form.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, loaded, cfg)
			if len(args) == 1 {
				loaded.Root = args[0]
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), loaded, opts, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringSliceVar(&cfg.Exclude, "exclude", nil, "glob of relative paths to skip (repeatable)")
	f.StringVar(&cfg.Format, "format", cfg.Format, "graph output format: dot or mermaid")
	f.BoolVar(&cfg.Sorted, "sorted", cfg.Sorted, "print edges in sorted order")
	f.BoolVar(&cfg.KeepUnresolved, "keep-unresolved", false, "keep edges to types that could not be resolved")
	f.BoolVar(&cfg.TypeArguments, "type-args", false, "add edges for generic type arguments")
	f.BoolVar(&cfg.Strict, "strict", false, "fail when two files declare the same type")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of extraction workers")
	f.StringSliceVar(&cfg.KnownTypes, "known-type", nil, "extra fully-qualified library type (repeatable)")
	f.BoolVar(&cfg.Report.Disabled, "no-report", false, "skip the per-type report")
	f.BoolVar(&cfg.Report.ShowFailures, "show-failures", false, "list files that failed to parse and duplicate types")
	f.StringVar(&cfg.Export.SQLite, "sqlite", "", "export the run to this SQLite database")
	f.StringVar(&cfg.Export.Neo4j.URI, "neo4j-uri", "", "export the graph to this Neo4j instance")
	f.StringVar(&cfg.Export.Neo4j.User, "neo4j-user", "", "Neo4j user")
	f.StringVar(&cfg.Export.Neo4j.Password, "neo4j-password", "", "Neo4j password")
	f.BoolVar(&cfg.Server.Enabled, "serve", false, "serve the diagram over HTTP after the run")
	f.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP server port")
	f.Bool("no-browser", false, "do not open a browser when serving")
	f.StringVar(&cfg.Log.File, "log-file", "", "also write logs to this file")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	f.StringVar(&opts.filter, "filter", "", "only show edges touching this package prefix")
	f.BoolVar(&opts.noJDK, "no-jdk", false, "hide edges into java.* and javax.*")

	cmd.AddCommand(newDependentsCmd(stdout))
	return cmd
}

// newDependentsCmd queries a database written with --sqlite.
func newDependentsCmd(stdout io.Writer) *cobra.Command {
	var dbPath, runID, logLevel string

	cmd := &cobra.Command{
		Use:   "dependents <type>",
		Short: "List the types that depend on a type in a stored run",
		Long: `dependents reads a SQLite database written with --sqlite and prints,
one per line, every type with an edge into the given fully-qualified type.
The latest stored run is used unless --run is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger, cleanup, err := logging.Setup("", level)
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			defer cleanup()
			return queryDependents(cmd.Context(), stdout, dbPath, runID, args[0], logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dbPath, "sqlite", "", "SQLite database written by a previous run")
	f.StringVar(&runID, "run", "", "run id to query (default: latest)")
	f.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("sqlite")
	return cmd
}

func queryDependents(ctx context.Context, w io.Writer, dbPath, runID, target string, logger *slog.Logger) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db, err := export.OpenSQLite(dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID == "" {
		runs, err := db.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs stored in %s", dbPath)
		}
		runID = runs[len(runs)-1]
	}
	logger.Debug("querying dependents", "run_id", runID, "target", target)

	deps, err := db.Dependents(ctx, runID, target)
	if err != nil {
		return err
	}
	for _, d := range deps {
		if _, err := fmt.Fprintln(w, d); err != nil {
			return err
		}
	}
	return nil
}

// applyFlags copies explicitly set flags from flagged onto cfg, so flags
// override file and environment values but defaults do not.
func applyFlags(cmd *cobra.Command, cfg, flagged *config.Config) {
	f := cmd.Flags()
	set := map[string]func(){
		"exclude":         func() { cfg.Exclude = append(cfg.Exclude, flagged.Exclude...) },
		"format":          func() { cfg.Format = flagged.Format },
		"sorted":          func() { cfg.Sorted = flagged.Sorted },
		"keep-unresolved": func() { cfg.KeepUnresolved = flagged.KeepUnresolved },
		"type-args":       func() { cfg.TypeArguments = flagged.TypeArguments },
		"strict":          func() { cfg.Strict = flagged.Strict },
		"workers":         func() { cfg.Workers = flagged.Workers },
		"known-type":      func() { cfg.KnownTypes = append(cfg.KnownTypes, flagged.KnownTypes...) },
		"no-report":       func() { cfg.Report.Disabled = flagged.Report.Disabled },
		"show-failures":   func() { cfg.Report.ShowFailures = flagged.Report.ShowFailures },
		"sqlite":          func() { cfg.Export.SQLite = flagged.Export.SQLite },
		"neo4j-uri":       func() { cfg.Export.Neo4j.URI = flagged.Export.Neo4j.URI },
		"neo4j-user":      func() { cfg.Export.Neo4j.User = flagged.Export.Neo4j.User },
		"neo4j-password":  func() { cfg.Export.Neo4j.Password = flagged.Export.Neo4j.Password },
		"serve":           func() { cfg.Server.Enabled = flagged.Server.Enabled },
		"port":            func() { cfg.Server.Port = flagged.Server.Port },
		"log-file":        func() { cfg.Log.File = flagged.Log.File },
		"log-level":       func() { cfg.Log.Level = flagged.Log.Level },
	}
	for name, apply := range set {
		if f.Changed(name) {
			apply()
		}
	}
	if f.Changed("no-browser") {
		noBrowser, _ := f.GetBool("no-browser")
		cfg.Server.OpenBrowser = !noBrowser
	}
}

// analysisOptions maps the configuration onto pipeline options.
func analysisOptions(cfg *config.Config) analysis.Options {
	opts := analysis.DefaultOptions()
	opts.Exclude = cfg.Exclude
	opts.MaxFileSize = cfg.MaxFileSize
	opts.CacheSize = cfg.CacheSize
	opts.Workers = cfg.Workers
	opts.Strict = cfg.Strict
	opts.KnownTypes = cfg.KnownTypes
	opts.Policy.KeepUnresolved = cfg.KeepUnresolved
	opts.Policy.TypeArguments = cfg.TypeArguments
	return opts
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, logCleanup, err := logging.Setup(cfg.Log.File, level)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logCleanup()

	res, cleanup, err := analysis.Analyze(ctx, cfg.Root, analysisOptions(cfg), logger)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		return err
	}
	defer cleanup()

	if err := exportResult(ctx, cfg, res, logger); err != nil {
		logger.Error("export failed", "error", err)
		return err
	}

	view := analysis.Filter(res, analysis.FilterOptions{PackagePrefix: opts.filter, ExcludeJDK: opts.noJDK})
	if err := writeOutput(stdout, cfg, view); err != nil {
		return err
	}

	if !cfg.Server.Enabled {
		return nil
	}
	viewer, err := server.New(view, server.DefaultOptions(), logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Starting server on http://localhost:%d\n", cfg.Server.Port)
	return viewer.Serve(ctx, cfg.Server.Port, cfg.Server.OpenBrowser)
}

// writeOutput prints the count line, the per-type report and the graph.
func writeOutput(w io.Writer, cfg *config.Config, res *analysis.Result) error {
	if err := report.WriteSummary(w, res.Units); err != nil {
		return err
	}
	if !cfg.Report.Disabled {
		if err := report.WriteTypes(w, res.Types); err != nil {
			return err
		}
	}
	if cfg.Report.ShowFailures {
		if err := report.WriteFailures(w, res.Failures); err != nil {
			return err
		}
		if err := report.WriteCollisions(w, res.Collisions); err != nil {
			return err
		}
	}

	switch cfg.Format {
	case "mermaid":
		fmt.Fprintln(w, "\n--- Mermaid (copy to graph.mmd) ---")
		mermaid := diagram.GenerateMermaid(res.Types, res.Graph, diagram.DefaultDiagramOptions())
		_, err := fmt.Fprintln(w, mermaid)
		return err
	default:
		fmt.Fprintln(w, "\n--- DOT (copy to graph.dot) ---")
		dot := diagram.DefaultDOTOptions()
		dot.Sorted = cfg.Sorted
		return diagram.WriteDOT(w, res.Graph, dot)
	}
}

func exportResult(ctx context.Context, cfg *config.Config, res *analysis.Result, logger *slog.Logger) error {
	if cfg.Export.SQLite != "" {
		db, err := export.OpenSQLite(cfg.Export.SQLite, logger)
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		err = db.Export(ctx, res)
		err = errors.Join(err, db.Close())
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
	}

	if n := cfg.Export.Neo4j; n.URI != "" {
		loader, err := export.NewNeo4j(ctx, export.Neo4jConfig{
			URI: n.URI, User: n.User, Password: n.Password, Database: n.Database,
		}, logger)
		if err != nil {
			return fmt.Errorf("neo4j export: %w", err)
		}
		err = loader.Export(ctx, res)
		err = errors.Join(err, loader.Close(ctx))
		if err != nil {
			return fmt.Errorf("neo4j export: %w", err)
		}
	}
	return nil
}
