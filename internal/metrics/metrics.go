// Package metrics exposes optional Prometheus counters for batch
// progress, wired only when the orchestrator is started with
// --metrics-addr. Nothing in the orchestration path depends on this
// package for correctness.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pairwise-alignment/pa-bench/internal/pool"
)

var (
	jobsDone = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pa_bench",
		Name:      "jobs_done_total",
		Help:      "Total jobs the worker pool has finished processing.",
	})
	jobsSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pa_bench",
		Name:      "jobs_success_total",
		Help:      "Total jobs that completed successfully.",
	})
	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pa_bench",
		Name:      "jobs_failed_total",
		Help:      "Total jobs that failed (excluding skipped/unsupported/interrupted).",
	})
	jobsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pa_bench",
		Name:      "jobs_skipped_total",
		Help:      "Total jobs synthesized as Skipped by the dynamic in-batch skip rule.",
	})
	jobsUnsupported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pa_bench",
		Name:      "jobs_unsupported_total",
		Help:      "Total jobs the runner reported as Unsupported.",
	})
)

// Observer updates the counters from a Counts snapshot, keeping whichever
// counter deltas have accumulated since the previous observation.
type Observer struct {
	last pool.Counts
}

// Update advances the counters to match the latest cumulative snapshot.
func (o *Observer) Update(c pool.Counts) {
	jobsDone.Add(float64(c.Done - o.last.Done))
	jobsSuccess.Add(float64(c.Success - o.last.Success))
	jobsFailed.Add(float64(c.Failed - o.last.Failed))
	jobsSkipped.Add(float64(c.Skipped - o.last.Skipped))
	jobsUnsupported.Add(float64(c.Unsupported - o.last.Unsupported))
	o.last = c
}

// Serve starts the /metrics HTTP endpoint and blocks until ctx is
// cancelled or the server fails.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving prometheus metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
