// Package store implements the result store (C2): loading and atomically
// saving the JSON corpus of JobResults at the results path.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Load reads the JSON corpus from path. A missing file, or forceRerun
// being set, yields an empty corpus rather than an error.
func Load(path string, forceRerun bool) ([]models.JobResult, error) {
	if forceRerun {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading results corpus %s: %w", path, err)
	}

	var results []models.JobResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results corpus %s: %w", path, err)
	}
	return results, nil
}

// Save writes the corpus to path atomically: it writes to a sibling
// temporary file and renames it into place, falling back to a direct
// overwrite if the rename crosses a filesystem boundary.
func Save(path string, results []models.JobResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results corpus: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".results-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary results file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary results file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary results file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Cross-device rename; fall back to a direct write, best-effort.
		if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("renaming results file: %w (fallback write also failed: %v)", err, writeErr)
		}
		os.Remove(tmpPath)
	}
	return nil
}
