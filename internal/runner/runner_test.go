package runner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/models"
	"github.com/pairwise-alignment/pa-bench/internal/runner"
)

func TestSupportedFamilies(t *testing.T) {
	if !runner.Supported(models.FamilyNW) {
		t.Fatalf("expected nw to be supported")
	}
	if !runner.Supported(models.FamilyBanded) {
		t.Fatalf("expected banded to be supported")
	}
	if runner.Supported(models.FamilyAStar) {
		t.Fatalf("expected astar to be unsupported")
	}
}

func TestLoadPairsData(t *testing.T) {
	job := models.Job{Dataset: &models.DataDataset{Pairs: []models.Pair{{A: "AC", B: "AG"}}}}
	pairs, err := runner.LoadPairs(job)
	if err != nil {
		t.Fatalf("LoadPairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].A != "AC" {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}
}

func TestLoadPairsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.seq")
	if err := os.WriteFile(path, []byte("ACGT\tACGA\nGGTT\tGGTT\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	job := models.Job{Dataset: &models.FileDataset{Path: path, ResolvedPath: path}}
	pairs, err := runner.LoadPairs(job)
	if err != nil {
		t.Fatalf("LoadPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[1].A != "GGTT" || pairs[1].B != "GGTT" {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
}

func TestLoadPairsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.seq")
	if err := os.WriteFile(path, []byte("no-tab-here\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	job := models.Job{Dataset: &models.FileDataset{ResolvedPath: path}}
	if _, err := runner.LoadPairs(job); err == nil {
		t.Fatalf("expected malformed line to error")
	}
}

func TestExecuteNWProducesExactCosts(t *testing.T) {
	job := models.Job{
		Dataset: &models.DataDataset{Pairs: []models.Pair{{A: "ACGT", B: "ACGT"}, {A: "ACGT", B: "ACCT"}}},
		Costs:   models.UnitCost(),
		Algo:    models.NWParams{},
	}
	out, err := runner.Execute(job, -1)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsExact {
		t.Fatalf("expected nw output to be exact")
	}
	if len(out.Costs) != 2 || out.Costs[0] != 0 || out.Costs[1] != 1 {
		t.Fatalf("unexpected costs: %v", out.Costs)
	}
}

func TestExecuteBandedProducesApproximateCosts(t *testing.T) {
	job := models.Job{
		Dataset: &models.DataDataset{Pairs: []models.Pair{{A: "ACGTACGT", B: "ACGTACGT"}}},
		Costs:   models.UnitCost(),
		Algo:    models.BandedParams{Band: 2},
	}
	out, err := runner.Execute(job, -1)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.IsExact {
		t.Fatalf("expected banded output to be marked approximate")
	}
	if out.Costs[0] != 0 {
		t.Fatalf("expected identical sequences to cost 0, got %d", out.Costs[0])
	}
}

func TestExecuteRejectsUnsupportedFamily(t *testing.T) {
	job := models.Job{
		Dataset: &models.DataDataset{Pairs: []models.Pair{{A: "AC", B: "AG"}}},
		Algo:    models.AStarParams{Prune: "greedy"},
	}
	if _, err := runner.Execute(job, -1); err == nil {
		t.Fatalf("expected astar to be rejected")
	}
}
