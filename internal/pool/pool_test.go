package pool_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/expander"
	"github.com/pairwise-alignment/pa-bench/internal/models"
	"github.com/pairwise-alignment/pa-bench/internal/pool"
)

// TestMain lets this test binary double as the runner child process: when
// re-exec'd with PA_BENCH_HELPER_PROCESS=1 it reads a job from stdin and
// always reports a trivial success.
func TestMain(m *testing.M) {
	if os.Getenv("PA_BENCH_HELPER_PROCESS") == "1" {
		io.ReadAll(os.Stdin)
		out := models.JobOutput{Costs: []int{1}, IsExact: true}
		enc, _ := json.Marshal(out)
		os.Stdout.Write(enc)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestRunExecutesAllCandidatesUnpinned(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("finding test binary: %v", err)
	}
	t.Setenv("PA_BENCH_HELPER_PROCESS", "1")

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("opening devnull: %v", err)
	}
	defer devnull.Close()

	candidates := []expander.Candidate{
		{Job: models.Job{Dataset: &models.FileDataset{Path: "a.seq"}, Costs: models.UnitCost(), Algo: models.NWParams{}}},
		{Job: models.Job{Dataset: &models.FileDataset{Path: "b.seq"}, Costs: models.UnitCost(), Algo: models.NWParams{}}},
	}

	cfg := pool.Config{RunnerPath: self, Progress: devnull}
	results := pool.Run(context.Background(), candidates, cfg)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Succeeded() {
			t.Fatalf("expected success, got %+v", r.Failure)
		}
	}
}
