package pool

import (
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

func genJob(memLimit int64, seqLen int) models.Job {
	return models.Job{
		TimeLimit: 0,
		MemLimit:  memLimit,
		Dataset:   &models.GeneratedDataset{Seed: 1, SequenceLength: seqLen, TotalSize: int64(seqLen)},
		Costs:     models.UnitCost(),
		Algo:      models.NWParams{},
	}
}

func TestDynamicSkipFindsDominatingFailure(t *testing.T) {
	acc := &resultAccumulator{}
	small := genJob(100, 10)
	timeout := models.Timeout()
	acc.append(models.JobResult{Job: small, Failure: &timeout})

	larger := genJob(50, 20)
	dominator, found := acc.dynamicSkip(larger)
	if !found {
		t.Fatalf("expected larger job to be dominated by smaller prior failure")
	}
	if !dominator.Dataset.Equal(small.Dataset) {
		t.Fatalf("expected the dominating job to be returned")
	}
}

func TestDynamicSkipIgnoresSuccess(t *testing.T) {
	acc := &resultAccumulator{}
	small := genJob(100, 10)
	acc.append(models.JobResult{Job: small, Output: &models.JobOutput{Costs: []int{1}}})

	larger := genJob(50, 20)
	if _, found := acc.dynamicSkip(larger); found {
		t.Fatalf("a successful prior result must never trigger a skip")
	}
}

func TestDynamicSkipIgnoresNonGeneratedDataset(t *testing.T) {
	acc := &resultAccumulator{}
	job := models.Job{Dataset: &models.FileDataset{Path: "a.seq"}, Costs: models.UnitCost(), Algo: models.NWParams{}}
	if _, found := acc.dynamicSkip(job); found {
		t.Fatalf("file datasets never participate in dynamic skip")
	}
}

func TestCountersInterruptedOnlyCountsTowardDone(t *testing.T) {
	c := &counters{}
	interrupted := models.Interrupted()
	got := c.record(models.JobResult{Failure: &interrupted})
	if got.Done != 1 || got.Failed != 0 {
		t.Fatalf("expected interrupted to count toward done only, got %+v", got)
	}
}

func TestCountersClassifyEachBucket(t *testing.T) {
	c := &counters{}
	skipped := models.Skipped()
	unsupported := models.Unsupported()
	timeout := models.Timeout()
	c.record(models.JobResult{Output: &models.JobOutput{}})
	c.record(models.JobResult{Failure: &skipped})
	c.record(models.JobResult{Failure: &unsupported})
	got := c.record(models.JobResult{Failure: &timeout})

	if got.Done != 4 || got.Success != 1 || got.Skipped != 1 || got.Unsupported != 1 || got.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}

func TestJobQueuePopExhausts(t *testing.T) {
	q := &jobQueue{}
	if _, ok := q.pop(); ok {
		t.Fatalf("expected pop on empty queue to report not-ok")
	}
}
