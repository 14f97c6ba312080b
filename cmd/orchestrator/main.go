// Command orchestrator drives a pairwise-alignment benchmark experiment
// end to end: expansion, incremental planning, parallel execution,
// session logging, corpus merge, and cost verification.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pairwise-alignment/pa-bench/internal/affinity"
	"github.com/pairwise-alignment/pa-bench/internal/config"
	"github.com/pairwise-alignment/pa-bench/internal/expander"
	"github.com/pairwise-alignment/pa-bench/internal/manifest"
	"github.com/pairwise-alignment/pa-bench/internal/metrics"
	"github.com/pairwise-alignment/pa-bench/internal/models"
	"github.com/pairwise-alignment/pa-bench/internal/planner"
	"github.com/pairwise-alignment/pa-bench/internal/pool"
	"github.com/pairwise-alignment/pa-bench/internal/sessionlog"
	"github.com/pairwise-alignment/pa-bench/internal/store"
	"github.com/pairwise-alignment/pa-bench/internal/verifier"
)

type flags struct {
	dataDir     string
	logsDir     string
	runnerPath  string
	timeLimit   string
	memLimit    string
	nice        int
	niceSet     bool
	numJobs     int
	stderr      bool
	incremental bool
	rerunFailed bool
	verbose     bool
	forceRerun  bool
	metricsAddr string
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:   "orchestrator <experiment> [results]",
		Short: "Run a pairwise-alignment benchmark experiment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if f.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			experimentPath := args[0]
			resultsPath := ""
			if len(args) == 2 {
				resultsPath = args[1]
			} else {
				resultsPath = defaultResultsPath(experimentPath)
			}

			return run(cmd.Context(), experimentPath, resultsPath, f)
		},
	}

	root.Flags().StringVar(&f.dataDir, "data-dir", "evals/data", "directory holding generated and referenced datasets")
	root.Flags().StringVar(&f.logsDir, "logs-dir", "evals/results/.log", "directory for append-only session logs")
	root.Flags().StringVar(&f.runnerPath, "runner", "", "path to the runner binary (default: next to this binary)")
	root.Flags().StringVar(&f.timeLimit, "time-limit", "", "per-job wall time limit, e.g. 30s (default: experiment file, then 60s)")
	root.Flags().StringVar(&f.memLimit, "mem-limit", "", "per-job memory limit, e.g. 1GiB (default: experiment file, then 1GiB)")
	root.Flags().IntVar(&f.nice, "nice", 0, "niceness applied to spawned runner children")
	root.Flags().IntVarP(&f.numJobs, "num-jobs", "j", 0, "number of parallel worker threads (default: 1, unpinned)")
	root.Flags().BoolVar(&f.stderr, "stderr", false, "forward runner children's stderr to the orchestrator's stderr")
	root.Flags().BoolVarP(&f.incremental, "incremental", "i", false, "skip candidates already satisfied by a prior result")
	root.Flags().BoolVarP(&f.rerunFailed, "rerun-failed", "r", false, "also rerun prior failures that had more resources than the candidate")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug-level logging")
	root.Flags().BoolVar(&f.forceRerun, "force-rerun", false, "discard the existing results corpus instead of loading it")
	root.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")

	root.PreRun = func(cmd *cobra.Command, args []string) {
		f.niceSet = cmd.Flags().Changed("nice")
	}

	if err := root.Execute(); err != nil {
		slog.Error("orchestrator failed", "error", err)
		os.Exit(1)
	}
}

func defaultResultsPath(experimentPath string) string {
	dir, file := filepath.Split(experimentPath)
	parts := strings.Split(filepath.Clean(dir), string(filepath.Separator))
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "experiments" {
			parts[i] = "results"
			break
		}
	}
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(filepath.Join(parts...), stem+".json")
}

func run(ctx context.Context, experimentPath, resultsPath string, f flags) error {
	if f.numJobs > 0 {
		if err := affinity.Pin(0); err != nil {
			slog.Warn("pinning orchestrator to core 0 failed", "error", err)
		}
	}

	exp, err := config.LoadExperiment(experimentPath)
	if err != nil {
		return fmt.Errorf("loading experiment: %w", err)
	}

	runnerPath := f.runnerPath
	if runnerPath == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating default runner path: %w", err)
		}
		runnerPath = filepath.Join(filepath.Dir(self), "runner")
	}

	manifestPath := filepath.Join(filepath.Dir(runnerPath), "runner-manifest.toml")
	var runnerManifest *manifest.Manifest
	if m, err := manifest.Load(manifestPath); err != nil {
		return fmt.Errorf("loading runner manifest: %w", err)
	} else {
		runnerManifest = m
	}

	var timeLimitOverride *time.Duration
	if f.timeLimit != "" {
		d, err := time.ParseDuration(f.timeLimit)
		if err != nil {
			return fmt.Errorf("parsing --time-limit: %w", err)
		}
		timeLimitOverride = &d
	}
	var memLimitOverride *int64
	if f.memLimit != "" {
		b, err := config.ParseMemLimit(f.memLimit)
		if err != nil {
			return fmt.Errorf("parsing --mem-limit: %w", err)
		}
		memLimitOverride = &b
	}

	candidates, err := expander.Expand(ctx, exp, expander.Options{
		DataDir:        f.dataDir,
		TimeLimit:      timeLimitOverride,
		MemLimit:       memLimitOverride,
		ForceRegen:     f.forceRerun,
		RunnerManifest: runnerManifest,
	})
	if err != nil {
		return fmt.Errorf("expanding experiment: %w", err)
	}

	prior, err := store.Load(resultsPath, f.forceRerun)
	if err != nil {
		return fmt.Errorf("loading prior results: %w", err)
	}

	allJobs := make([]models.Job, len(candidates))
	for i, c := range candidates {
		allJobs[i] = c.Job
	}

	runJobs := planner.Plan(allJobs, prior, planner.Options{
		Incremental: f.incremental,
		RerunFailed: f.rerunFailed,
	})

	runCandidates := selectCandidates(candidates, runJobs)
	for _, c := range runCandidates {
		models.ResolveDispatchPath(c.Job.Dataset, f.dataDir)
	}

	cfg := pool.Config{
		RunnerPath:  runnerPath,
		RunnerCores: workerCores(f.numJobs),
		Verbose:     f.verbose,
	}
	if f.niceSet {
		n := f.nice
		cfg.Nice = &n
	}
	if f.stderr {
		cfg.Stderr = os.Stderr
	}

	var observer metrics.Observer
	if f.metricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(metricsCtx, f.metricsAddr); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
		cfg.OnProgress = observer.Update
	}

	executed := pool.Run(ctx, runCandidates, cfg)

	if _, err := sessionlog.Write(f.logsDir, experimentPath, executed, time.Now()); err != nil {
		return fmt.Errorf("writing session log: %w", err)
	}

	retained := planner.Retained(prior, executed)
	merged := planner.Merge(retained, executed)

	if err := verifier.Verify(merged); err != nil {
		return fmt.Errorf("verifying costs: %w", err)
	}

	if err := store.Save(resultsPath, merged); err != nil {
		return fmt.Errorf("saving results corpus: %w", err)
	}

	slog.Info("experiment complete", "candidates", len(candidates), "executed", len(executed), "corpus_size", len(merged))
	return nil
}

// selectCandidates maps the planner's chosen jobs back onto their
// Candidate (which also carries generation stats the planner doesn't
// need), preserving run's order and matching each job to the first
// not-yet-consumed equal candidate so duplicate jobs are handled
// correctly.
func selectCandidates(all []expander.Candidate, run []models.Job) []expander.Candidate {
	consumed := make([]bool, len(all))
	selected := make([]expander.Candidate, 0, len(run))
	for _, j := range run {
		for i, c := range all {
			if consumed[i] {
				continue
			}
			if c.Job.IsSameAs(j) {
				selected = append(selected, c)
				consumed[i] = true
				break
			}
		}
	}
	return selected
}

func workerCores(numJobs int) []int {
	if numJobs <= 0 {
		return nil
	}
	total := runtime.NumCPU()
	degree := numJobs
	if total-1 < degree {
		degree = total - 1
	}
	if degree <= 0 {
		return nil
	}
	cores := make([]int, degree)
	for i := range cores {
		cores[i] = i + 1
	}
	return cores
}
