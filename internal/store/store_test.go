package store_test

import (
	"path/filepath"
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/models"
	"github.com/pairwise-alignment/pa-bench/internal/store"
)

func sampleResult() models.JobResult {
	return models.JobResult{
		Job: models.Job{
			TimeLimit: 0,
			Dataset:   &models.FileDataset{Path: "a.seq"},
			Costs:     models.UnitCost(),
			Algo:      models.NWParams{},
		},
		Output: &models.JobOutput{Costs: []int{1, 2, 3}, IsExact: true},
	}
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	results, err := store.Load(filepath.Join(t.TempDir(), "absent.json"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty corpus, got %d entries", len(results))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.json")
	want := []models.JobResult{sampleResult()}

	if err := store.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || !got[0].Succeeded() {
		t.Fatalf("expected one successful result, got %+v", got)
	}
	if got[0].Output.Costs[2] != 3 {
		t.Fatalf("expected costs to round-trip, got %v", got[0].Output.Costs)
	}
}

func TestLoadForceRerunIgnoresExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := store.Save(path, []models.JobResult{sampleResult()}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	results, err := store.Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected force-rerun to discard existing corpus, got %d entries", len(results))
	}
}
