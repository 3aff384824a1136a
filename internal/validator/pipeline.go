// Package validator runs the full vault pass: collect documents,
// analyze diagrams through the parse cache, assemble the traceability
// graph, and evaluate the rule set.
package validator

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/analyzer"
	"github.com/starford/raido/internal/collector"
	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parsecache"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/storage"
)

// Result is the outcome of one validation pass.
type Result struct {
	Assets  []*models.Asset
	Context *graph.Context
	Report  *rules.Report
}

// Validator wires the pass stages together.
type Validator struct {
	store   storage.Provider
	cache   *parsecache.Cache
	engine  *rules.Engine
	logger  *slog.Logger
	workers int
}

// New creates a validator. The cache may be in-memory (empty path).
func New(store storage.Provider, cache *parsecache.Cache, engine *rules.Engine, logger *slog.Logger) *Validator {
	return &Validator{
		store:   store,
		cache:   cache,
		engine:  engine,
		logger:  logger,
		workers: runtime.NumCPU(),
	}
}

// Run executes one full pass. Analysis fans out across a bounded worker
// group; graph assembly and rule evaluation stay single-threaded so the
// outcome is deterministic regardless of worker scheduling.
func (v *Validator) Run(ctx context.Context) (*Result, error) {
	assets, err := collector.New(v.store, v.logger).Collect()
	if err != nil {
		return nil, err
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].RelPath < assets[j].RelPath })

	analyses := make([]models.Analysis, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, a := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analyses[i] = v.analyze(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := graph.NewBuilder()
	for i, a := range assets {
		b.Add(a, analyses[i])
	}
	gc := b.Context()

	report := v.engine.Evaluate(assets, gc)

	if err := v.cache.Save(); err != nil {
		v.logger.Warn("validator: cache save failed", slog.String("error", err.Error()))
	}

	v.logger.Info("validator: pass complete",
		slog.Int("assets", len(assets)),
		slog.Int("nodes", len(gc.Nodes)),
		slog.Int("errors", len(report.Errors())),
		slog.Int("warnings", len(report.Warnings())))

	return &Result{Assets: assets, Context: gc, Report: report}, nil
}

// analyze resolves one asset's diagram analysis, cache first.
func (v *Validator) analyze(a *models.Asset) models.Analysis {
	content := []byte(a.Body)
	if hit, ok := v.cache.Get(content); ok {
		return hit
	}
	res := analyzer.Analyze(a.Body)
	v.cache.Put(content, a.RelPath, res)
	return res
}
