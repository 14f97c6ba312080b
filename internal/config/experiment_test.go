package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pairwise-alignment/pa-bench/internal/config"
)

const sampleExperiment = `
time_limit: 30s
mem_limit: 256MiB
datasets:
  - generated:
      seed: 1
      error_model: uniform
      error_rate: 0.05
      sequence_length: 100
      total_size: 1000
  - file:
      path: custom.seq
cost_models:
  - {match: 0, sub: 1, open: 0, extend: 1}
traceback: [false]
algorithms:
  - nw: {}
  - banded: {band: 32}
`

func writeExperiment(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing experiment file: %v", err)
	}
	return path
}

func TestLoadExperiment(t *testing.T) {
	path := writeExperiment(t, sampleExperiment)

	exp, err := config.LoadExperiment(path)
	if err != nil {
		t.Fatalf("LoadExperiment: %v", err)
	}

	if len(exp.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(exp.Datasets))
	}
	if len(exp.Algorithms) != 2 {
		t.Fatalf("expected 2 algorithms, got %d", len(exp.Algorithms))
	}

	ds, err := exp.Datasets[0].ToModel()
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if ds.Kind() != "generated" {
		t.Fatalf("expected generated dataset, got %s", ds.Kind())
	}
}

func TestLoadExperimentRejectsEmptyAxes(t *testing.T) {
	path := writeExperiment(t, "datasets: []\n")
	if _, err := config.LoadExperiment(path); err == nil {
		t.Fatalf("expected error for missing datasets/cost_models/algorithms")
	}
}

func TestResolveTimeLimitPriority(t *testing.T) {
	exp := &config.Experiment{TimeLimit: "45s"}

	// File value wins when CLI is unset.
	got, err := config.ResolveTimeLimit(nil, exp)
	if err != nil || got != 45*time.Second {
		t.Fatalf("expected 45s from file, got %v, err %v", got, err)
	}

	// CLI overrides file.
	cli := 10 * time.Second
	got, err = config.ResolveTimeLimit(&cli, exp)
	if err != nil || got != cli {
		t.Fatalf("expected CLI override, got %v, err %v", got, err)
	}

	// Hard-coded fallback when both are absent.
	got, err = config.ResolveTimeLimit(nil, &config.Experiment{})
	if err != nil || got != config.DefaultTimeLimit {
		t.Fatalf("expected hard-coded default, got %v, err %v", got, err)
	}
}

func TestResolveMemLimitPriority(t *testing.T) {
	exp := &config.Experiment{MemLimit: "512MiB"}

	got, err := config.ResolveMemLimit(nil, exp)
	if err != nil || got != 512*1024*1024 {
		t.Fatalf("expected 512MiB from file, got %v, err %v", got, err)
	}

	cli := int64(1024)
	got, err = config.ResolveMemLimit(&cli, exp)
	if err != nil || got != cli {
		t.Fatalf("expected CLI override, got %v, err %v", got, err)
	}

	got, err = config.ResolveMemLimit(nil, &config.Experiment{})
	if err != nil || got != config.DefaultMemLimit {
		t.Fatalf("expected hard-coded default, got %v, err %v", got, err)
	}
}

func TestAlgorithmSpecRequiresExactlyOne(t *testing.T) {
	spec := config.AlgorithmSpec{}
	if _, err := spec.ToModel(); err == nil {
		t.Fatalf("expected error when no algorithm family is set")
	}
}
