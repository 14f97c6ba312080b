// Package expander implements the experiment expander (C1): it takes the
// parsed experiment document, resolves global resource defaults, takes the
// Cartesian product of its axes, and ensures every Generated dataset it
// references exists on disk before returning the candidate job list.
package expander

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pairwise-alignment/pa-bench/internal/config"
	"github.com/pairwise-alignment/pa-bench/internal/datasetgen"
	"github.com/pairwise-alignment/pa-bench/internal/manifest"
	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Options controls expansion beyond what the experiment document itself
// specifies.
type Options struct {
	DataDir        string
	TimeLimit      *time.Duration
	MemLimit       *int64
	ForceRegen     bool
	RunnerManifest *manifest.Manifest
	Generator      datasetgen.Generator
	// GenConcurrency bounds how many Generated datasets are materialized
	// at once. Zero or a negative value uses the default bound of 4.
	GenConcurrency int
}

// Candidate is one expanded job together with the per-dataset statistics
// recorded if that job's dataset had to be (re)generated.
type Candidate struct {
	Job   models.Job
	Stats *models.AlignStats
}

// Expand resolves defaults, takes the Cartesian product of the experiment's
// axes, and materializes any missing Generated datasets.
func Expand(ctx context.Context, exp *config.Experiment, opts Options) ([]Candidate, error) {
	timeLimit, err := config.ResolveTimeLimit(opts.TimeLimit, exp)
	if err != nil {
		return nil, fmt.Errorf("resolving time limit: %w", err)
	}
	memLimit, err := config.ResolveMemLimit(opts.MemLimit, exp)
	if err != nil {
		return nil, fmt.Errorf("resolving mem limit: %w", err)
	}

	datasets := make([]models.Dataset, len(exp.Datasets))
	for i, ds := range exp.Datasets {
		model, err := ds.ToModel()
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		datasets[i] = model
	}

	algorithms := make([]models.AlgorithmParams, len(exp.Algorithms))
	families := make([]models.AlgorithmFamily, len(exp.Algorithms))
	for i, a := range exp.Algorithms {
		model, err := a.ToModel()
		if err != nil {
			return nil, fmt.Errorf("algorithm %d: %w", i, err)
		}
		algorithms[i] = model
		families[i] = model.Family()
	}

	if err := opts.RunnerManifest.CheckAll(families); err != nil {
		return nil, fmt.Errorf("runner manifest check: %w", err)
	}

	candidates := make([]Candidate, 0, len(datasets)*len(exp.CostModels)*len(exp.Traceback)*len(algorithms))
	for _, ds := range datasets {
		for _, costs := range exp.CostModels {
			for _, traceback := range exp.Traceback {
				for _, algo := range algorithms {
					candidates = append(candidates, Candidate{
						Job: models.Job{
							TimeLimit: timeLimit,
							MemLimit:  memLimit,
							Dataset:   ds,
							Costs:     costs,
							Traceback: traceback,
							Algo:      algo,
						},
					})
				}
			}
		}
	}

	if err := ensureGeneratedDatasets(ctx, candidates, opts); err != nil {
		return nil, err
	}

	slog.Info("expanded experiment", "candidates", len(candidates), "datasets", len(datasets), "algorithms", len(algorithms))
	return candidates, nil
}

// ensureGeneratedDatasets materializes every distinct Generated dataset
// referenced by candidates, fanning out with a bounded errgroup the way the
// registry resolver clones distinct repositories concurrently. Stats are
// written back onto every Candidate sharing that exact dataset.
func ensureGeneratedDatasets(ctx context.Context, candidates []Candidate, opts Options) error {
	type group struct {
		dataset *models.GeneratedDataset
		path    string
		members []int
	}

	groups := make(map[string]*group)
	var order []string
	for i, c := range candidates {
		gd, ok := c.Job.Dataset.(*models.GeneratedDataset)
		if !ok {
			continue
		}
		path := gd.Path(opts.DataDir)
		g, found := groups[path]
		if !found {
			g = &group{dataset: gd, path: path}
			groups[path] = g
			order = append(order, path)
		}
		g.members = append(g.members, i)
	}
	if len(order) == 0 {
		return nil
	}

	gen := opts.Generator
	if gen == nil {
		gen = datasetgen.NewDefaultGenerator()
	}

	limit := opts.GenConcurrency
	if limit <= 0 {
		limit = 4
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	var statsMu sync.Mutex
	computed := make(map[string]models.AlignStats, len(order))

	for _, path := range order {
		path := path
		g := groups[path]
		exists, err := fileExists(path)
		if err != nil {
			return fmt.Errorf("checking dataset %s: %w", path, err)
		}
		if exists && !opts.ForceRegen {
			continue
		}
		eg.Go(func() error {
			slog.Debug("generating dataset", "path", path, "seed", g.dataset.Seed)
			stats, err := gen.Generate(egCtx, g.dataset, path)
			if err != nil {
				return fmt.Errorf("generating dataset %s: %w", path, err)
			}
			statsMu.Lock()
			computed[path] = stats
			statsMu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for path, stats := range computed {
		stats := stats
		for _, idx := range groups[path].members {
			candidates[idx].Stats = &stats
		}
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
