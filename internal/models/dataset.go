package models

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// DatasetKind identifies which of the three Dataset variants a value is.
type DatasetKind string

const (
	DatasetGenerated DatasetKind = "generated"
	DatasetFile      DatasetKind = "file"
	DatasetData      DatasetKind = "data"
)

// ErrorModel identifies how a Generated dataset's simulated errors are
// distributed along its sequences.
type ErrorModel string

const (
	ErrorModelUniform ErrorModel = "uniform"
	ErrorModelNone     ErrorModel = "none"
)

// Dataset is the tagged union described in spec §3: a source of sequence
// pairs that is either generated-by-spec, read-from-file, or inlined.
type Dataset interface {
	Kind() DatasetKind
	// Equal reports whether two datasets are the same input, per the
	// equality rule for their respective variant.
	Equal(other Dataset) bool
}

// GeneratedDataset is a fully deterministic, parametric dataset. Two
// GeneratedDatasets are equal iff all parameters match (PathPrefix is not
// a parameter of the content, so it is excluded from equality).
type GeneratedDataset struct {
	Seed           uint64     `json:"seed"`
	Model          ErrorModel `json:"error_model"`
	ErrorRate      float64    `json:"error_rate"`
	SequenceLength int        `json:"sequence_length"`
	TotalSize      int64      `json:"total_size"`
	PatternLength  *int       `json:"pattern_length,omitempty"`
	PathPrefix     string     `json:"path_prefix,omitempty"`
	// ResolvedPath is filled in by the orchestrator right before
	// dispatch with this dataset's absolute on-disk location, so the
	// runner child does not need its own --data-dir flag. It plays no
	// part in dataset identity.
	ResolvedPath string `json:"resolved_path,omitempty"`
}

func (g *GeneratedDataset) Kind() DatasetKind { return DatasetGenerated }

func (g *GeneratedDataset) Equal(other Dataset) bool {
	o, ok := other.(*GeneratedDataset)
	if !ok {
		return false
	}
	return g.Seed == o.Seed &&
		g.Model == o.Model &&
		g.ErrorRate == o.ErrorRate &&
		g.SequenceLength == o.SequenceLength &&
		g.TotalSize == o.TotalSize &&
		patternLengthEqual(g.PatternLength, o.PatternLength)
}

// FileName is a pure function of the dataset's parameters: its on-disk
// name, independent of the data directory it is ultimately rooted under.
func (g *GeneratedDataset) FileName() string {
	pattern := 0
	if g.PatternLength != nil {
		pattern = *g.PatternLength
	}
	return fmt.Sprintf("seed%d-%s-e%g-l%d-s%d-p%d.seq",
		g.Seed, g.Model, g.ErrorRate, g.SequenceLength, g.TotalSize, pattern)
}

// Path resolves this dataset's on-disk location under dataDir.
func (g *GeneratedDataset) Path(dataDir string) string {
	if g.PathPrefix != "" {
		return filepath.Join(dataDir, g.PathPrefix, g.FileName())
	}
	return filepath.Join(dataDir, g.FileName())
}

// ResolveDispatchPath fills in the ResolvedPath hint the runner child
// uses to locate dataset content, joining relative paths against
// dataDir. It is a no-op for DataDataset, which carries its pairs
// inline.
func ResolveDispatchPath(ds Dataset, dataDir string) {
	switch d := ds.(type) {
	case *GeneratedDataset:
		d.ResolvedPath = d.Path(dataDir)
	case *FileDataset:
		if filepath.IsAbs(d.Path) {
			d.ResolvedPath = d.Path
		} else {
			d.ResolvedPath = filepath.Join(dataDir, d.Path)
		}
	}
}

// GreaterOrEqual implements the partial order on Generated datasets from
// spec §3: same error model, same pattern length, and componentwise >=
// on error rate, sequence length and total size.
func (g *GeneratedDataset) GreaterOrEqual(o *GeneratedDataset) bool {
	return g.Model == o.Model &&
		patternLengthEqual(g.PatternLength, o.PatternLength) &&
		g.ErrorRate >= o.ErrorRate &&
		g.SequenceLength >= o.SequenceLength &&
		g.TotalSize >= o.TotalSize
}

func patternLengthEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FileDataset references a pre-existing .seq file on disk.
type FileDataset struct {
	Path string `json:"path"`
	// ResolvedPath is Path joined against --data-dir by the orchestrator
	// before dispatch, when Path is not already absolute. Identity is
	// still governed by Path alone.
	ResolvedPath string `json:"resolved_path,omitempty"`
}

func (f *FileDataset) Kind() DatasetKind { return DatasetFile }

func (f *FileDataset) Equal(other Dataset) bool {
	o, ok := other.(*FileDataset)
	return ok && f.Path == o.Path
}

// Pair is a single (a, b) sequence pair.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// DataDataset is an inline sequence of pairs, for testing only.
type DataDataset struct {
	Pairs []Pair `json:"pairs"`
}

func (d *DataDataset) Kind() DatasetKind { return DatasetData }

func (d *DataDataset) Equal(other Dataset) bool {
	o, ok := other.(*DataDataset)
	if !ok || len(d.Pairs) != len(o.Pairs) {
		return false
	}
	for i, p := range d.Pairs {
		if p != o.Pairs[i] {
			return false
		}
	}
	return true
}

// datasetEnvelope is the wire format for Dataset: a kind tag plus the
// variant-specific payload.
type datasetEnvelope struct {
	Kind    DatasetKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalDataset encodes a Dataset value to its tagged JSON envelope.
func MarshalDataset(d Dataset) ([]byte, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling dataset payload: %w", err)
	}
	return json.Marshal(datasetEnvelope{Kind: d.Kind(), Payload: payload})
}

// UnmarshalDataset decodes a tagged JSON envelope into the concrete
// Dataset implementation for its kind.
func UnmarshalDataset(data []byte) (Dataset, error) {
	var env datasetEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding dataset envelope: %w", err)
	}
	switch env.Kind {
	case DatasetGenerated:
		var g GeneratedDataset
		if err := json.Unmarshal(env.Payload, &g); err != nil {
			return nil, fmt.Errorf("decoding generated dataset: %w", err)
		}
		return &g, nil
	case DatasetFile:
		var f FileDataset
		if err := json.Unmarshal(env.Payload, &f); err != nil {
			return nil, fmt.Errorf("decoding file dataset: %w", err)
		}
		return &f, nil
	case DatasetData:
		var d DataDataset
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return nil, fmt.Errorf("decoding data dataset: %w", err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unknown dataset kind %q", env.Kind)
	}
}
