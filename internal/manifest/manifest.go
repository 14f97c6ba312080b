// Package manifest loads the runner's capability manifest: a TOML sidecar
// declaring which algorithm families a particular runner build supports,
// so the expander can fail fast instead of discovering an unsupported
// algorithm one spawned child at a time.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Algorithm describes one algorithm family a runner build supports.
type Algorithm struct {
	Family string `toml:"family"`
	Exact  bool   `toml:"exact"`
}

// Manifest is the parsed runner-manifest.toml document.
type Manifest struct {
	Version    string      `toml:"version"`
	Algorithms []Algorithm `toml:"algorithms"`
}

// Load reads a manifest from path. A missing file is not an error: it
// simply means no pre-flight capability check will be performed, and
// unsupported algorithms are only discovered at execution time via the
// runner's exit code 102.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading runner manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing runner manifest: %w", err)
	}
	return &m, nil
}

// Supports reports whether the manifest declares support for family. A nil
// manifest (none loaded) supports everything, deferring the decision to
// the runner's own exit code.
func (m *Manifest) Supports(family models.AlgorithmFamily) bool {
	if m == nil {
		return true
	}
	for _, a := range m.Algorithms {
		if a.Family == string(family) {
			return true
		}
	}
	return false
}

// CheckAll returns an orchestrator-fatal error naming every algorithm
// family used by jobs but not declared in the manifest.
func (m *Manifest) CheckAll(families []models.AlgorithmFamily) error {
	if m == nil {
		return nil
	}
	var unsupported []models.AlgorithmFamily
	seen := make(map[models.AlgorithmFamily]bool)
	for _, f := range families {
		if seen[f] {
			continue
		}
		seen[f] = true
		if !m.Supports(f) {
			unsupported = append(unsupported, f)
		}
	}
	if len(unsupported) > 0 {
		return fmt.Errorf("algorithm families not declared by runner manifest: %v", unsupported)
	}
	return nil
}
