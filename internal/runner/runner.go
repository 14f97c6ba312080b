// Package runner implements the execution side of the runner contract:
// given one Job on stdin, load its dataset pairs, run the requested
// algorithm over each pair, and produce a JobOutput. It is the package
// cmd/runner wires to stdin/stdout, signal handling and self-enforced
// resource limits.
package runner

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/pairwise-alignment/pa-bench/internal/align"
	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Supported reports whether this runner build implements family. astar is
// declared in the wire format but has no implementation here; a manifest
// shipped alongside the binary should list only nw and banded so the
// orchestrator never dispatches it, but Execute enforces the same rule
// independently.
func Supported(family models.AlgorithmFamily) bool {
	switch family {
	case models.FamilyNW, models.FamilyBanded:
		return true
	default:
		return false
	}
}

// LoadPairs resolves job's dataset to its sequence pairs. Generated and
// File datasets are read from ResolvedPath, the location the orchestrator
// fills in right before dispatch; Data datasets carry their pairs inline.
func LoadPairs(job models.Job) ([]models.Pair, error) {
	switch d := job.Dataset.(type) {
	case *models.GeneratedDataset:
		return readPairsFile(d.ResolvedPath)
	case *models.FileDataset:
		path := d.ResolvedPath
		if path == "" {
			path = d.Path
		}
		return readPairsFile(path)
	case *models.DataDataset:
		return d.Pairs, nil
	default:
		return nil, fmt.Errorf("unrecognized dataset kind %q", job.Dataset.Kind())
	}
}

func readPairsFile(path string) ([]models.Pair, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset has no resolved path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	var pairs []models.Pair
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed dataset line %q", line)
		}
		pairs = append(pairs, models.Pair{A: fields[0], B: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return pairs, nil
}

// Execute runs job's algorithm over every pair in its dataset and builds
// the JobOutput the runner contract prints to stdout. startCore is
// whatever core affinity.Pin most recently placed this thread on, or -1
// if unpinned.
func Execute(job models.Job, startCore int) (models.JobOutput, error) {
	if !Supported(job.Algo.Family()) {
		return models.JobOutput{}, fmt.Errorf("algorithm family %q not implemented by this runner", job.Algo.Family())
	}

	pairs, err := LoadPairs(job)
	if err != nil {
		return models.JobOutput{}, err
	}

	started := time.Now()
	startFreq := coreFreqMHz(startCore)

	costs := make([]int, len(pairs))
	isExact := true
	for i, p := range pairs {
		cost, exact, err := align.Compute(job.Algo, job.Costs, p.A, p.B)
		if err != nil {
			return models.JobOutput{}, err
		}
		costs[i] = cost
		isExact = isExact && exact
	}

	endCore := currentCore()
	ended := time.Now()

	return models.JobOutput{
		Costs:   costs,
		IsExact: isExact,
		Measured: models.Measured{
			StartedAt:    started,
			EndedAt:      ended,
			StartCore:    startCore,
			EndCore:      endCore,
			StartFreqMHz: startFreq,
			EndFreqMHz:   coreFreqMHz(endCore),
		},
	}, nil
}

// currentCore reports the core the calling thread is presently scheduled
// on, or -1 if the kernel can't tell us.
func currentCore() int {
	core, err := unix.SchedGetcpu()
	if err != nil {
		return -1
	}
	return core
}

// coreFreqMHz best-effort reads a core's current scaling frequency from
// sysfs. Unavailable (non-Linux, missing cpufreq, sandboxed) returns 0
// rather than failing the job: frequency is diagnostic, not load-bearing.
func coreFreqMHz(core int) float64 {
	if core < 0 {
		return 0
	}
	path := fmt.Sprintf("/sys/devices/system/cpu/cpu%d/cpufreq/scaling_cur_freq", core)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	khz := strings.TrimSpace(string(data))
	var v float64
	if _, err := fmt.Sscanf(khz, "%f", &v); err != nil {
		return 0
	}
	return v / 1000
}
