package models_test

import (
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

func intPtr(n int) *int { return &n }

func TestGeneratedDatasetEqual(t *testing.T) {
	base := &models.GeneratedDataset{
		Seed: 1, Model: models.ErrorModelUniform, ErrorRate: 0.1,
		SequenceLength: 100, TotalSize: 1000, PatternLength: intPtr(4),
	}
	same := &models.GeneratedDataset{
		Seed: 1, Model: models.ErrorModelUniform, ErrorRate: 0.1,
		SequenceLength: 100, TotalSize: 1000, PatternLength: intPtr(4),
		PathPrefix: "elsewhere", // not part of equality
	}
	if !base.Equal(same) {
		t.Fatalf("expected equal datasets to compare equal")
	}

	diffSeed := &models.GeneratedDataset{
		Seed: 2, Model: models.ErrorModelUniform, ErrorRate: 0.1,
		SequenceLength: 100, TotalSize: 1000, PatternLength: intPtr(4),
	}
	if base.Equal(diffSeed) {
		t.Fatalf("expected different seeds to compare unequal")
	}
}

func TestGeneratedDatasetGreaterOrEqual(t *testing.T) {
	small := &models.GeneratedDataset{Model: models.ErrorModelUniform, ErrorRate: 0.1, SequenceLength: 100, TotalSize: 1000}
	big := &models.GeneratedDataset{Model: models.ErrorModelUniform, ErrorRate: 0.2, SequenceLength: 200, TotalSize: 2000}

	if !big.GreaterOrEqual(small) {
		t.Fatalf("expected big >= small")
	}
	if small.GreaterOrEqual(big) {
		t.Fatalf("expected small not >= big")
	}

	diffModel := &models.GeneratedDataset{Model: models.ErrorModelNone, ErrorRate: 0.3, SequenceLength: 300, TotalSize: 3000}
	if diffModel.GreaterOrEqual(small) {
		t.Fatalf("expected different error models to never compare >=")
	}
}

func TestDatasetEnvelopeRoundTrip(t *testing.T) {
	var original models.Dataset = &models.GeneratedDataset{
		Seed: 42, Model: models.ErrorModelUniform, ErrorRate: 0.05,
		SequenceLength: 500, TotalSize: 5000,
	}

	encoded, err := models.MarshalDataset(original)
	if err != nil {
		t.Fatalf("MarshalDataset: %v", err)
	}

	decoded, err := models.UnmarshalDataset(encoded)
	if err != nil {
		t.Fatalf("UnmarshalDataset: %v", err)
	}

	if !original.Equal(decoded) {
		t.Fatalf("round-tripped dataset not equal to original")
	}
}

func TestFileDatasetEqual(t *testing.T) {
	a := &models.FileDataset{Path: "a.seq"}
	b := &models.FileDataset{Path: "a.seq"}
	c := &models.FileDataset{Path: "b.seq"}

	if !a.Equal(b) {
		t.Fatalf("expected equal paths to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected different paths to compare unequal")
	}
}

func TestResolveDispatchPathGenerated(t *testing.T) {
	gd := &models.GeneratedDataset{Seed: 1, Model: models.ErrorModelUniform, SequenceLength: 10, TotalSize: 10}
	other := &models.GeneratedDataset{Seed: 1, Model: models.ErrorModelUniform, SequenceLength: 10, TotalSize: 10}

	models.ResolveDispatchPath(gd, "/data")
	if gd.ResolvedPath == "" {
		t.Fatalf("expected ResolvedPath to be set")
	}
	if !gd.Equal(other) {
		t.Fatalf("ResolvedPath must not affect equality")
	}
}

func TestResolveDispatchPathFileRelative(t *testing.T) {
	fd := &models.FileDataset{Path: "pairs/a.seq"}
	models.ResolveDispatchPath(fd, "/data")
	if fd.ResolvedPath != "/data/pairs/a.seq" {
		t.Fatalf("expected joined path, got %q", fd.ResolvedPath)
	}
}

func TestDataDatasetEqual(t *testing.T) {
	a := &models.DataDataset{Pairs: []models.Pair{{A: "AC", B: "AG"}}}
	b := &models.DataDataset{Pairs: []models.Pair{{A: "AC", B: "AG"}}}
	c := &models.DataDataset{Pairs: []models.Pair{{A: "AC", B: "AT"}}}

	if !a.Equal(b) {
		t.Fatalf("expected equal pair lists to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected different pair lists to compare unequal")
	}
}
