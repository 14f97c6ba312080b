package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Job is one deterministic benchmark task: a dataset, cost model,
// traceback flag, algorithm and resource limits.
type Job struct {
	TimeLimit time.Duration
	MemLimit  int64 // bytes
	Dataset   Dataset
	Costs     CostModel
	Traceback bool
	Algo      AlgorithmParams
}

// IsSameAs reports whether two jobs are semantically equal: they agree on
// everything except resource limits.
func (j Job) IsSameAs(o Job) bool {
	return j.Dataset.Equal(o.Dataset) &&
		j.Costs == o.Costs &&
		j.Traceback == o.Traceback &&
		algorithmEqual(j.Algo, o.Algo)
}

// HasMoreResourcesThan reports whether j's resource limits are both >= o's.
func (j Job) HasMoreResourcesThan(o Job) bool {
	return j.TimeLimit >= o.TimeLimit && j.MemLimit >= o.MemLimit
}

// SameInput reports whether two jobs operate on the same input: same
// dataset and same cost model. Used by the cost verifier to find a
// reference result.
func (j Job) SameInput(o Job) bool {
	return j.Dataset.Equal(o.Dataset) && j.Costs == o.Costs
}

// IsLarger reports whether j is a resource-shrunk, dataset-grown sibling
// of o: same (costs, algo, traceback), j's resource limits are <= o's,
// and j's dataset is ordered >= o's under the Generated partial order.
// Both datasets must be Generated.
func (j Job) IsLarger(o Job) bool {
	jg, ok := j.Dataset.(*GeneratedDataset)
	if !ok {
		return false
	}
	og, ok := o.Dataset.(*GeneratedDataset)
	if !ok {
		return false
	}
	if j.Costs != o.Costs || j.Traceback != o.Traceback || !algorithmEqual(j.Algo, o.Algo) {
		return false
	}
	if j.TimeLimit > o.TimeLimit || j.MemLimit > o.MemLimit {
		return false
	}
	return jg.GreaterOrEqual(og)
}

// jobWire is the JSON wire representation of a Job: the tagged-union
// fields are flattened to raw envelopes so Job can round-trip through
// encoding/json without a custom codec at every call site.
type jobWire struct {
	TimeLimitSeconds float64         `json:"time_limit_seconds"`
	MemLimitBytes    int64           `json:"mem_limit_bytes"`
	Dataset          json.RawMessage `json:"dataset"`
	Costs            CostModel       `json:"costs"`
	Traceback        bool            `json:"traceback"`
	Algo             json.RawMessage `json:"algo"`
}

func (j Job) MarshalJSON() ([]byte, error) {
	dataset, err := MarshalDataset(j.Dataset)
	if err != nil {
		return nil, err
	}
	algo, err := MarshalAlgorithmParams(j.Algo)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jobWire{
		TimeLimitSeconds: j.TimeLimit.Seconds(),
		MemLimitBytes:    j.MemLimit,
		Dataset:          dataset,
		Costs:            j.Costs,
		Traceback:        j.Traceback,
		Algo:             algo,
	})
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var wire jobWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decoding job: %w", err)
	}
	dataset, err := UnmarshalDataset(wire.Dataset)
	if err != nil {
		return err
	}
	algo, err := UnmarshalAlgorithmParams(wire.Algo)
	if err != nil {
		return err
	}
	j.TimeLimit = time.Duration(wire.TimeLimitSeconds * float64(time.Second))
	j.MemLimit = wire.MemLimitBytes
	j.Dataset = dataset
	j.Costs = wire.Costs
	j.Traceback = wire.Traceback
	j.Algo = algo
	return nil
}
