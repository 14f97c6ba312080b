// Package config parses the declarative experiment document and merges
// CLI/file/hard-coded defaults, per spec §4.1 and §6.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Hard-coded fallbacks, lowest priority in the override chain
// (CLI flag > experiment file > hard-coded fallback).
const (
	DefaultTimeLimit = 60 * time.Second
	DefaultMemLimit  = 1 << 30 // 1 GiB
)

// GeneratedSpec is the YAML shape of a Generated dataset.
type GeneratedSpec struct {
	Seed           uint64             `yaml:"seed"`
	ErrorModel     models.ErrorModel  `yaml:"error_model"`
	ErrorRate      float64            `yaml:"error_rate"`
	SequenceLength int                `yaml:"sequence_length"`
	TotalSize      int64              `yaml:"total_size"`
	PatternLength  *int               `yaml:"pattern_length,omitempty"`
	PathPrefix     string             `yaml:"path_prefix,omitempty"`
}

// FileSpec is the YAML shape of a File dataset.
type FileSpec struct {
	Path string `yaml:"path"`
}

// PairSpec is one inline (a, b) pair.
type PairSpec struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// DataSpec is the YAML shape of an inline Data dataset.
type DataSpec struct {
	Pairs []PairSpec `yaml:"pairs"`
}

// DatasetSpec is a tagged union over the three dataset variants: exactly
// one of Generated, File, Data must be set.
type DatasetSpec struct {
	Generated *GeneratedSpec `yaml:"generated,omitempty"`
	File      *FileSpec      `yaml:"file,omitempty"`
	Data      *DataSpec      `yaml:"data,omitempty"`
}

// ToModel converts a DatasetSpec into the models.Dataset it describes.
func (s DatasetSpec) ToModel() (models.Dataset, error) {
	set := 0
	var ds models.Dataset
	if s.Generated != nil {
		set++
		ds = &models.GeneratedDataset{
			Seed:           s.Generated.Seed,
			Model:          s.Generated.ErrorModel,
			ErrorRate:      s.Generated.ErrorRate,
			SequenceLength: s.Generated.SequenceLength,
			TotalSize:      s.Generated.TotalSize,
			PatternLength:  s.Generated.PatternLength,
			PathPrefix:     s.Generated.PathPrefix,
		}
	}
	if s.File != nil {
		set++
		ds = &models.FileDataset{Path: s.File.Path}
	}
	if s.Data != nil {
		set++
		pairs := make([]models.Pair, len(s.Data.Pairs))
		for i, p := range s.Data.Pairs {
			pairs[i] = models.Pair{A: p.A, B: p.B}
		}
		ds = &models.DataDataset{Pairs: pairs}
	}
	if set != 1 {
		return nil, fmt.Errorf("dataset entry must set exactly one of generated/file/data, got %d", set)
	}
	return ds, nil
}

// AlgorithmSpec is a tagged union over the algorithm families.
type AlgorithmSpec struct {
	NW     *struct{}               `yaml:"nw,omitempty"`
	Banded *models.BandedParams    `yaml:"banded,omitempty"`
	AStar  *models.AStarParams     `yaml:"astar,omitempty"`
}

// ToModel converts an AlgorithmSpec into the models.AlgorithmParams it
// describes.
func (s AlgorithmSpec) ToModel() (models.AlgorithmParams, error) {
	set := 0
	var algo models.AlgorithmParams
	if s.NW != nil {
		set++
		algo = models.NWParams{}
	}
	if s.Banded != nil {
		set++
		algo = *s.Banded
	}
	if s.AStar != nil {
		set++
		algo = *s.AStar
	}
	if set != 1 {
		return nil, fmt.Errorf("algorithm entry must set exactly one of nw/banded/astar, got %d", set)
	}
	return algo, nil
}

// Experiment is the parsed experiment document: the Cartesian-product
// axes C1 expands plus optional per-experiment resource defaults.
type Experiment struct {
	TimeLimit  string          `yaml:"time_limit,omitempty"`
	MemLimit   string          `yaml:"mem_limit,omitempty"`
	Datasets   []DatasetSpec   `yaml:"datasets"`
	CostModels []models.CostModel `yaml:"cost_models"`
	Traceback  []bool          `yaml:"traceback"`
	Algorithms []AlgorithmSpec `yaml:"algorithms"`
}

// LoadExperiment reads and parses an experiment YAML document.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment file: %w", err)
	}
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parsing experiment yaml: %w", err)
	}
	if len(exp.Datasets) == 0 {
		return nil, fmt.Errorf("experiment must declare at least one dataset")
	}
	if len(exp.CostModels) == 0 {
		return nil, fmt.Errorf("experiment must declare at least one cost model")
	}
	if len(exp.Traceback) == 0 {
		exp.Traceback = []bool{false}
	}
	if len(exp.Algorithms) == 0 {
		return nil, fmt.Errorf("experiment must declare at least one algorithm")
	}
	return &exp, nil
}

// ResolveTimeLimit applies the CLI > file > hard-coded override chain.
func ResolveTimeLimit(cliValue *time.Duration, exp *Experiment) (time.Duration, error) {
	if cliValue != nil {
		return *cliValue, nil
	}
	if exp.TimeLimit != "" {
		d, err := time.ParseDuration(exp.TimeLimit)
		if err != nil {
			return 0, fmt.Errorf("parsing experiment time_limit %q: %w", exp.TimeLimit, err)
		}
		return d, nil
	}
	return DefaultTimeLimit, nil
}

// ResolveMemLimit applies the CLI > file > hard-coded override chain.
func ResolveMemLimit(cliValue *int64, exp *Experiment) (int64, error) {
	if cliValue != nil {
		return *cliValue, nil
	}
	if exp.MemLimit != "" {
		b, err := humanize.ParseBytes(exp.MemLimit)
		if err != nil {
			return 0, fmt.Errorf("parsing experiment mem_limit %q: %w", exp.MemLimit, err)
		}
		return int64(b), nil
	}
	return DefaultMemLimit, nil
}

// ParseMemLimit parses a human bytes string such as "1GiB" for --mem-limit.
func ParseMemLimit(s string) (int64, error) {
	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parsing mem limit %q: %w", s, err)
	}
	return int64(b), nil
}
