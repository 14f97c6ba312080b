// Package pool implements the worker pool (C4). This is a deliberate
// departure from channel-based fan-out/fan-in: the dynamic in-batch skip
// rule needs every worker to see a synchronously up-to-date view of
// results produced by its peers, which a mutex-protected shared
// accumulator gives for free and a channel pipeline does not.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pairwise-alignment/pa-bench/internal/affinity"
	"github.com/pairwise-alignment/pa-bench/internal/executor"
	"github.com/pairwise-alignment/pa-bench/internal/expander"
	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Config configures one batch run of the worker pool.
type Config struct {
	RunnerPath string
	// RunnerCores lists the cores to pin one thread to each. An empty
	// slice runs exactly one unpinned thread.
	RunnerCores []int
	Nice        *int
	Verbose     bool
	Stderr      *os.File
	// Progress, if non-nil, receives progress-line updates. Defaults to
	// os.Stderr.
	Progress *os.File
	// OnProgress, if set, is called after every classified job with the
	// cumulative counts so far (e.g. to feed the optional Prometheus
	// exposition in internal/metrics).
	OnProgress func(Counts)
}

// Counts tallies batch outcomes for the progress line, per spec §4.4:
// Interrupted results count toward Done only, never toward Failed.
type Counts struct {
	Done        int
	Success     int
	Unsupported int
	Skipped     int
	Failed      int
}

func (c Counts) String() string {
	return fmt.Sprintf("done=%d success=%d unsupported=%d skipped=%d failed=%d",
		c.Done, c.Success, c.Unsupported, c.Skipped, c.Failed)
}

// Run executes candidates with the configured worker pool and returns the
// results that should be appended to the corpus.
func Run(ctx context.Context, candidates []expander.Candidate, cfg Config) []models.JobResult {
	progress := cfg.Progress
	if progress == nil {
		progress = os.Stderr
	}

	q := &jobQueue{items: candidates}
	acc := &resultAccumulator{}
	counts := &counters{}
	cancel := &cancellation{}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT)
	defer stop()
	go func() {
		<-ctx.Done()
		cancel.set()
	}()

	threads := cfg.RunnerCores
	if len(threads) == 0 {
		threads = []int{-1}
	}

	var wg sync.WaitGroup
	for _, core := range threads {
		core := core
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, core, q, acc, counts, cancel, cfg, progress)
		}()
	}
	wg.Wait()

	fmt.Fprintln(progress)
	return acc.snapshot()
}

func worker(ctx context.Context, core int, q *jobQueue, acc *resultAccumulator, counts *counters, cancel *cancellation, cfg Config, progress *os.File) {
	if core >= 0 {
		if err := affinity.Pin(core); err != nil {
			slog.Warn("pinning worker thread failed", "core", core, "error", err)
		}
	}

	for {
		candidate, ok := q.pop()
		if !ok {
			return
		}
		if cancel.isSet() {
			return
		}

		var result models.JobResult
		if skipPrev, found := acc.dynamicSkip(candidate.Job); found {
			skipped := models.Skipped()
			result = models.JobResult{Job: candidate.Job, Stats: candidate.Stats, Failure: &skipped}
			slog.Debug("skipping job dominated by prior failure", "dominating_job_algo", skipPrev.Algo.Family())
		} else {
			var pinCore *int
			if core >= 0 {
				c := core
				pinCore = &c
			}
			result = executor.Run(ctx, candidate.Job, executor.Options{
				RunnerPath: cfg.RunnerPath,
				PinCoreID:  pinCore,
				Nice:       cfg.Nice,
				Verbose:    cfg.Verbose,
				Stderr:     cfg.Stderr,
			})
			result.Stats = candidate.Stats
		}

		snapshot := counts.record(result)
		fmt.Fprintf(progress, "\r%s", snapshot)
		if cfg.OnProgress != nil {
			cfg.OnProgress(snapshot)
		}

		if !result.Succeeded() && cancel.isSet() {
			continue
		}
		acc.append(result)
	}
}

type jobQueue struct {
	mu    sync.Mutex
	items []expander.Candidate
	pos   int
}

func (q *jobQueue) pop() (expander.Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pos >= len(q.items) {
		return expander.Candidate{}, false
	}
	item := q.items[q.pos]
	q.pos++
	return item, true
}

type resultAccumulator struct {
	mu      sync.Mutex
	results []models.JobResult
}

func (a *resultAccumulator) append(r models.JobResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
}

func (a *resultAccumulator) snapshot() []models.JobResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.JobResult, len(a.results))
	copy(out, a.results)
	return out
}

// dynamicSkip scans accumulated results for a prior Generated-dataset
// failure that dominates job, per spec §4.4 step 3.
func (a *resultAccumulator) dynamicSkip(job models.Job) (models.Job, bool) {
	if _, ok := job.Dataset.(*models.GeneratedDataset); !ok {
		return models.Job{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, prev := range a.results {
		if prev.Failure == nil {
			continue
		}
		if _, ok := prev.Job.Dataset.(*models.GeneratedDataset); !ok {
			continue
		}
		if job.IsLarger(prev.Job) {
			return prev.Job, true
		}
	}
	return models.Job{}, false
}

type counters struct {
	mu sync.Mutex
	c  Counts
}

func (c *counters) record(r models.JobResult) Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Done++
	switch {
	case r.Succeeded():
		c.c.Success++
	case r.Failure.Kind == models.ErrKindSkipped:
		c.c.Skipped++
	case r.Failure.Kind == models.ErrKindUnsupported:
		c.c.Unsupported++
	case r.Failure.Kind == models.ErrKindInterrupted:
		// counted toward Done only
	default:
		c.c.Failed++
	}
	return c.c
}

type cancellation struct {
	mu        sync.Mutex
	cancelled bool
}

func (c *cancellation) set() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
}

func (c *cancellation) isSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}
