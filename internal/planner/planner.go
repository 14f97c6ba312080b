// Package planner implements the incremental planner (C3): given
// candidate jobs and a loaded prior corpus, it decides which candidates
// actually need to run and which prior results survive into the merged
// corpus.
package planner

import "github.com/pairwise-alignment/pa-bench/internal/models"

// Options controls which prior results are considered sticky.
type Options struct {
	// Incremental enables skipping candidates already satisfied by a
	// prior result. When false, every candidate runs (the traditional
	// from-scratch mode) and Plan returns N unchanged as R.
	Incremental bool
	// RerunFailed disables the "prior failure with >= resources" skip
	// rule, forcing even resource-dominated prior failures to re-run.
	RerunFailed bool
}

// Plan selects the subset of candidates that must execute (R) given the
// candidates (N) and the prior corpus (P), per spec §4.3. It does not
// compute the retained-prior set: that depends on the concrete executed
// batch R' (see Retained), not on R, since a job can be dispatched and
// then dropped by cancellation before producing a result.
func Plan(candidates []models.Job, prior []models.JobResult, opts Options) (run []models.Job) {
	if !opts.Incremental {
		return candidates
	}
	for _, j := range candidates {
		if skip(j, prior, opts) {
			continue
		}
		run = append(run, j)
	}
	return run
}

func skip(j models.Job, prior []models.JobResult, opts Options) bool {
	for _, p := range prior {
		if !p.Job.IsSameAs(j) {
			continue
		}
		if p.Succeeded() {
			return true
		}
		if !opts.RerunFailed && p.Job.HasMoreResourcesThan(j) {
			return true
		}
	}
	return false
}

// Retained computes P' = P \ { p : exists r in executed with
// r.job.is_same_as(p.job) }, per spec §4.3/§8's merge-identity
// invariant. executed must be the concrete batch pool.Run actually
// returned, not the dispatched candidate set: a job that was popped but
// then dropped by cancellation before producing any result must not
// supersede its prior entry, since no replacement row for it exists.
func Retained(prior []models.JobResult, executed []models.JobResult) []models.JobResult {
	var kept []models.JobResult
	for _, p := range prior {
		superseded := false
		for _, r := range executed {
			if r.Job.IsSameAs(p.Job) {
				superseded = true
				break
			}
		}
		if !superseded {
			kept = append(kept, p)
		}
	}
	return kept
}

// Merge produces the final corpus order: prior-first, then the newly
// executed batch.
func Merge(retained []models.JobResult, executed []models.JobResult) []models.JobResult {
	merged := make([]models.JobResult, 0, len(retained)+len(executed))
	merged = append(merged, retained...)
	merged = append(merged, executed...)
	return merged
}
