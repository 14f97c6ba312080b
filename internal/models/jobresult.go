package models

// JobOutput is the successful outcome of a job, as reported by the
// runner over stdout plus the verifier fields C6 fills in afterwards.
type JobOutput struct {
	Costs      []int     `json:"costs"`
	ExactCosts []int     `json:"exact_costs,omitempty"`
	IsExact    bool      `json:"is_exact"`
	PCorrect   *float64  `json:"p_correct,omitempty"`
	Measured   Measured  `json:"measured"`
}

// AlignStats summarizes the sequence-length distribution of a dataset,
// computed once at generation time.
type AlignStats struct {
	Pairs   int     `json:"pairs"`
	MinLen  int     `json:"min_len"`
	MaxLen  int     `json:"max_len"`
	MeanLen float64 `json:"mean_len"`
}

// JobResult is a fully executed (or synthesized-as-skipped) job: its
// input, the dataset stats available at dispatch time, the resources it
// consumed, and exactly one of Output or Failure.
type JobResult struct {
	Job       Job         `json:"job"`
	Stats     *AlignStats `json:"stats,omitempty"`
	Resources ResourceUsage `json:"resources"`
	Output    *JobOutput  `json:"output,omitempty"`
	Failure   *JobError   `json:"failure,omitempty"`
}

// Succeeded reports whether this result is a Success entry.
func (r JobResult) Succeeded() bool {
	return r.Output != nil
}
