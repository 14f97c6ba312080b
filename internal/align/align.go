// Package align implements the two illustrative alignment algorithms the
// shipped runner exercises: exact global (Needleman-Wunsch/Gotoh, affine
// gap costs) and an approximate banded variant of the same recurrence.
// Neither claims to be competitive with a real aligner; they exist to
// give the orchestrator pipeline genuine exact/approximate outputs to
// cross-verify.
package align

import (
	"fmt"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

const infinity = 1 << 30

// NW computes the exact global alignment cost between a and b under the
// affine gap cost model costs, via the standard three-matrix Gotoh
// recurrence (M: last op was match/sub, Ix: gap consuming a, Iy: gap
// consuming b).
func NW(costs models.CostModel, a, b string) int {
	n, m := len(a), len(b)

	M := make2D(n+1, m+1)
	Ix := make2D(n+1, m+1)
	Iy := make2D(n+1, m+1)

	M[0][0] = 0
	Ix[0][0] = infinity
	Iy[0][0] = infinity

	for i := 1; i <= n; i++ {
		M[i][0] = infinity
		Ix[i][0] = costs.Open + costs.Extend*i
		Iy[i][0] = infinity
	}
	for j := 1; j <= m; j++ {
		M[0][j] = infinity
		Iy[0][j] = costs.Open + costs.Extend*j
		Ix[0][j] = infinity
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := costs.Sub
			if a[i-1] == b[j-1] {
				sub = costs.Match
			}
			M[i][j] = min3(M[i-1][j-1], Ix[i-1][j-1], Iy[i-1][j-1]) + sub
			Ix[i][j] = min2(M[i-1][j]+costs.Open+costs.Extend, Ix[i-1][j]+costs.Extend)
			Iy[i][j] = min2(M[i][j-1]+costs.Open+costs.Extend, Iy[i][j-1]+costs.Extend)
		}
	}

	return min3(M[n][m], Ix[n][m], Iy[n][m])
}

// Banded approximates the same recurrence restricted to a diagonal band
// of half-width band: cells more than band positions off the main
// diagonal are treated as unreachable. A band wide enough to cover
// |len(a)-len(b)| plus the true edit distance reproduces the exact cost;
// a narrower band can overestimate it.
func Banded(costs models.CostModel, a, b string, band int) int {
	n, m := len(a), len(b)
	if band < 0 {
		band = 0
	}

	M := make2D(n+1, m+1)
	Ix := make2D(n+1, m+1)
	Iy := make2D(n+1, m+1)

	for i := 0; i <= n; i++ {
		for j := 0; j <= m; j++ {
			M[i][j], Ix[i][j], Iy[i][j] = infinity, infinity, infinity
		}
	}
	M[0][0] = 0

	for i := 0; i <= n; i++ {
		lo, hi := bandRange(i, m, band)
		for j := lo; j <= hi; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if i > 0 {
				Ix[i][j] = min2(inBand(M, i-1, j)+costs.Open+costs.Extend, inBand(Ix, i-1, j)+costs.Extend)
			}
			if j > 0 {
				Iy[i][j] = min2(inBand(M, i, j-1)+costs.Open+costs.Extend, inBand(Iy, i, j-1)+costs.Extend)
			}
			if i > 0 && j > 0 {
				sub := costs.Sub
				if a[i-1] == b[j-1] {
					sub = costs.Match
				}
				M[i][j] = min3(inBand(M, i-1, j-1), inBand(Ix, i-1, j-1), inBand(Iy, i-1, j-1)) + sub
			}
		}
	}

	return min3(M[n][m], Ix[n][m], Iy[n][m])
}

func bandRange(i, m, band int) (int, int) {
	lo := i - band
	if lo < 0 {
		lo = 0
	}
	hi := i + band
	if hi > m {
		hi = m
	}
	return lo, hi
}

func inBand(grid [][]int, i, j int) int {
	if i < 0 || j < 0 || i >= len(grid) || j >= len(grid[0]) {
		return infinity
	}
	return grid[i][j]
}

func make2D(rows, cols int) [][]int {
	grid := make([][]int, rows)
	backing := make([]int, rows*cols)
	for i := range grid {
		grid[i] = backing[i*cols : (i+1)*cols]
	}
	return grid
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int {
	return min2(a, min2(b, c))
}

// Compute dispatches to the algorithm family named by algo, returning
// the alignment cost for one pair. isExact reports whether the result
// is guaranteed optimal.
func Compute(algo models.AlgorithmParams, costs models.CostModel, a, b string) (cost int, isExact bool, err error) {
	switch p := algo.(type) {
	case models.NWParams:
		return NW(costs, a, b), true, nil
	case models.BandedParams:
		return Banded(costs, a, b, p.Band), false, nil
	default:
		return 0, false, fmt.Errorf("unsupported algorithm family %q", algo.Family())
	}
}
