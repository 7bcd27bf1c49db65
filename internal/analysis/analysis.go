// Package analysis runs the whole pipeline: discovery, parsing, indexing,
// extraction and graph building.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olehluchkiv/javadeps/internal/extract"
	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/loader"
	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
	"github.com/olehluchkiv/javadeps/internal/symbols"
)

// ErrDuplicateType is returned in strict mode when two declarations share
// an identity.
var ErrDuplicateType = errors.New("duplicate type identity")

// Options controls a run.
type Options struct {
	Exclude     []string
	MaxFileSize int // 0 means parser.DefaultMaxFileSize
	CacheSize   int
	Workers     int // <= 1 runs extraction on the calling goroutine
	Strict      bool
	KnownTypes  []string // extra fully-qualified names the resolver accepts
	Policy      graph.Policy
}

// DefaultOptions returns single-threaded options with the default policy.
func DefaultOptions() Options {
	return Options{
		CacheSize: symbols.DefaultCacheSize,
		Workers:   1,
		Policy:    graph.DefaultPolicy(),
	}
}

// Result is the final state of a run.
type Result struct {
	RunID      string
	Root       string
	Files      int // files discovered
	Units      int // files parsed successfully
	Failures   []parser.Failure
	Types      []model.TypeDecl // one per identity, first-seen order, last declaration wins
	Collisions []symbols.Collision
	Graph      *graph.Graph
	Duration   time.Duration
}

// Run analyzes every Java file under root. Loader errors abort the run;
// files that fail to parse are recorded in Result.Failures and skipped.
func Run(ctx context.Context, root string, opts Options, logger *slog.Logger) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Root: root, Graph: graph.New()}
	logger = logger.With("component", "analysis", "run_id", res.RunID)

	// Phase 0: discover and parse
	files, err := loader.Discover(ctx, root, loader.Options{Exclude: opts.Exclude})
	if err != nil {
		return nil, fmt.Errorf("discovering sources: %w", err)
	}
	res.Files = len(files)
	logger.Info("sources discovered", "root", root, "files", len(files))

	var popts []parser.Option
	if opts.MaxFileSize > 0 {
		popts = append(popts, parser.WithMaxFileSize(opts.MaxFileSize))
	}
	units, failures := parser.New(logger, popts...).ParseAll(ctx, files)
	defer func() {
		for _, u := range units {
			u.Close()
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Units = len(units)
	res.Failures = failures

	// Phase 1: index every declaration before any reference is resolved
	kb, err := symbols.LoadKnowledge()
	if err != nil {
		return nil, err
	}
	for _, id := range opts.KnownTypes {
		kb.Add(id)
	}
	ix, collisions := symbols.BuildIndex(units, kb)
	res.Collisions = collisions
	for _, c := range collisions {
		logger.Warn("duplicate type identity", "identity", c.Identity, "previous", c.Previous, "current", c.Current)
	}
	if opts.Strict && len(collisions) > 0 {
		c := collisions[0]
		return nil, fmt.Errorf("%w: %s declared in %s and %s", ErrDuplicateType, c.Identity, c.Previous, c.Current)
	}
	logger.Info("index built", "types", ix.Len(), "known", kb.Len())

	resolver, err := symbols.NewResolver(ix, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	ex := extract.New(resolver, logger)
	builder := graph.NewBuilder(res.Graph, opts.Policy, logger)

	// Phase 2: extract and build edges per unit
	perUnit, err := extractUnits(ctx, units, ex, builder, opts.Workers)
	if err != nil {
		return nil, err
	}
	res.Types = register(perUnit)

	stats := builder.Stats()
	res.Duration = time.Since(start)
	logger.Info("analysis complete",
		"units", res.Units,
		"failures", len(res.Failures),
		"types", len(res.Types),
		"edges", res.Graph.Len(),
		"unresolved_dropped", stats.NotResolved.Load(),
		"base_dropped", stats.BaseExcluded.Load(),
		"duration", res.Duration)
	return res, nil
}

// extractUnits fills one slot per unit so the registry order does not depend
// on scheduling.
func extractUnits(ctx context.Context, units []*parser.Unit, ex *extract.Extractor, b *graph.Builder, workers int) ([][]model.TypeDecl, error) {
	slots := make([][]model.TypeDecl, len(units))

	if workers <= 1 {
		for i, u := range units {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slots[i] = extractOne(u, ex, b)
		}
		return slots, nil
	}

	// Each unit builds a private graph; they are merged after the workers
	// finish so the shared graph lock is never contended.
	parts := make([]*graph.Graph, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fork := b.Fork()
			slots[i] = extractOne(u, ex, fork)
			parts[i] = fork.Graph()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, part := range parts {
		b.Graph().Merge(part)
	}
	return slots, nil
}

func extractOne(u *parser.Unit, ex *extract.Extractor, b *graph.Builder) []model.TypeDecl {
	decls := ex.Extract(u)
	for _, d := range decls {
		b.Add(d)
	}
	return decls
}

// register keeps one record per identity. A later declaration replaces an
// earlier one in place.
func register(perUnit [][]model.TypeDecl) []model.TypeDecl {
	var out []model.TypeDecl
	pos := make(map[string]int)
	for _, decls := range perUnit {
		for _, d := range decls {
			if i, ok := pos[d.Identity]; ok {
				out[i] = d
				continue
			}
			pos[d.Identity] = len(out)
			out = append(out, d)
		}
	}
	return out
}
