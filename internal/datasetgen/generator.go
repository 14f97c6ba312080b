// Package datasetgen materializes Generated datasets to disk and reports
// their length-distribution statistics. Byte-layout fidelity to the
// original pa_generate crate is explicitly out of scope (spec Non-goals);
// this package only needs to satisfy the invariant that a Generated
// dataset's file exists by the time a job referencing it is dispatched.
package datasetgen

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Generator materializes a Generated dataset to path.
type Generator interface {
	Generate(ctx context.Context, spec *models.GeneratedDataset, path string) (models.AlignStats, error)
}

// DefaultGenerator writes newline-delimited `a\tb` pairs derived
// deterministically from the dataset's seed.
type DefaultGenerator struct {
	// PairsPerDataset controls how many (a, b) pairs to synthesize. Each
	// pair's a sequence is exactly SequenceLength bases long; TotalSize
	// is not used by this generator.
	PairsPerDataset int
}

// NewDefaultGenerator returns a DefaultGenerator producing a reasonable
// number of pairs per dataset.
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{PairsPerDataset: 16}
}

const bases = "ACGT"

func (g *DefaultGenerator) Generate(ctx context.Context, spec *models.GeneratedDataset, path string) (models.AlignStats, error) {
	if err := ctx.Err(); err != nil {
		return models.AlignStats{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.AlignStats{}, fmt.Errorf("creating dataset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return models.AlignStats{}, fmt.Errorf("creating dataset file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rng := rand.New(rand.NewPCG(spec.Seed, spec.Seed^0x9e3779b97f4a7c15))

	stats := models.AlignStats{MinLen: int(^uint(0) >> 1)}
	pairs := g.PairsPerDataset
	if pairs <= 0 {
		pairs = 1
	}

	length := spec.SequenceLength
	if length <= 0 {
		length = 1
	}

	var totalLen int
	for i := 0; i < pairs; i++ {
		a := randomSeq(rng, length)
		b := mutate(rng, a, spec.Model, spec.ErrorRate)

		if _, err := fmt.Fprintf(w, "%s\t%s\n", a, b); err != nil {
			return models.AlignStats{}, fmt.Errorf("writing dataset pair: %w", err)
		}

		pairLen := len(a)
		if pairLen < stats.MinLen {
			stats.MinLen = pairLen
		}
		if pairLen > stats.MaxLen {
			stats.MaxLen = pairLen
		}
		totalLen += pairLen
	}

	if err := w.Flush(); err != nil {
		return models.AlignStats{}, fmt.Errorf("flushing dataset file: %w", err)
	}

	stats.Pairs = pairs
	stats.MeanLen = float64(totalLen) / float64(pairs)
	return stats, nil
}

func randomSeq(rng *rand.Rand, length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(bases[rng.IntN(len(bases))])
	}
	return sb.String()
}

// mutate derives b from a by independently substituting each base with
// probability errorRate. ErrorModelNone returns a verbatim.
func mutate(rng *rand.Rand, a string, model models.ErrorModel, errorRate float64) string {
	if model == models.ErrorModelNone || errorRate <= 0 {
		return a
	}
	var sb strings.Builder
	sb.Grow(len(a))
	for i := 0; i < len(a); i++ {
		if rng.Float64() < errorRate {
			sb.WriteByte(bases[rng.IntN(len(bases))])
		} else {
			sb.WriteByte(a[i])
		}
	}
	return sb.String()
}
