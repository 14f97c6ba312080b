// Package executor implements the job executor (C5): it spawns the
// runner binary as a child process for exactly one job, serializes the
// job to its stdin, collects rusage, and classifies the outcome.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Options configures a single child invocation.
type Options struct {
	RunnerPath string
	PinCoreID  *int // nil means unpinned
	Nice       *int
	Verbose    bool
	// Stderr, when non-nil, receives the child's stderr (for --stderr).
	// A nil Stderr discards it, matching the default "redirect to null
	// unless requested" behavior from spec §4.5.
	Stderr *os.File
	// Env overrides the child's environment. A nil Env inherits the
	// orchestrator's own environment.
	Env []string
}

// Run spawns the runner for job and returns its classified result. The
// child is intentionally NOT tied to ctx: a cancellation signal (SIGINT
// to the orchestrator) must stop the pool from dispatching further jobs,
// but an already-dispatched child is allowed to run to natural
// completion rather than being killed mid-flight. Callers gate the
// *next* dispatch on their own cancellation check instead.
func Run(ctx context.Context, job models.Job, opts Options) models.JobResult {
	result := models.JobResult{Job: job}

	args := []string{}
	if opts.PinCoreID != nil {
		args = append(args, "--pin-core-id", fmt.Sprintf("%d", *opts.PinCoreID))
	}
	if opts.Nice != nil {
		args = append(args, fmt.Sprintf("--nice=%d", *opts.Nice))
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}

	cmd := exec.CommandContext(context.Background(), opts.RunnerPath, args...)
	if opts.Env != nil {
		cmd.Env = opts.Env
	}

	payload, err := json.Marshal(job)
	if err != nil {
		result.Failure = &models.JobError{Kind: models.ErrKindExitCode, Code: -1}
		slog.Error("marshaling job payload", "error", err)
		return result
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	} else {
		cmd.Stderr = nil
	}

	started := time.Now()
	runErr := cmd.Run()
	wallTime := time.Since(started)

	result.Resources = collectResourceUsage(cmd, wallTime)

	classifyErr := classify(runErr, cmd.ProcessState)
	if classifyErr != nil {
		result.Failure = classifyErr
		return result
	}

	var output models.JobOutput
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		fail := models.ExitCodeError(-1)
		result.Failure = &fail
		slog.Error("parsing runner output", "error", err, "stdout_len", stdout.Len())
		return result
	}
	result.Output = &output
	return result
}

// classify maps a completed (or failed-to-complete) child invocation onto
// the closed JobError set from spec §4.5. A nil return means Success.
func classify(runErr error, state *os.ProcessState) *models.JobError {
	if runErr == nil {
		return nil
	}

	exitErr, ok := runErr.(*exec.ExitError)
	if !ok {
		// Could not even start the child (for example, the runner binary
		// is missing): there is no exit code or signal to classify, so
		// it is recorded as a per-job ExitCode(-1) failure; the
		// orchestration is not aborted.
		fail := models.ExitCodeError(-1)
		return &fail
	}

	if state == nil {
		state = exitErr.ProcessState
	}
	if state == nil {
		fail := models.ExitCodeError(-1)
		return &fail
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		var fail models.JobError
		switch sig {
		case syscall.SIGINT:
			fail = models.Interrupted()
		case syscall.SIGABRT:
			fail = models.MemoryLimit()
		case syscall.SIGKILL:
			fail = models.Timeout()
		default:
			fail = models.SignalError(int(sig))
		}
		return &fail
	}

	code := state.ExitCode()
	var fail models.JobError
	switch code {
	case 101:
		fail = models.Panicked()
	case 102:
		fail = models.Unsupported()
	default:
		fail = models.ExitCodeError(code)
	}
	return &fail
}

// collectResourceUsage reads the POSIX rusage the kernel reports at wait4
// time via os.ProcessState, the idiomatic Go surface for
// `{utime, stime, maxrss}` without reaching for raw syscalls.
func collectResourceUsage(cmd *exec.Cmd, wallTime time.Duration) models.ResourceUsage {
	usage := models.ResourceUsage{WallTime: wallTime}
	if cmd.ProcessState == nil {
		return usage
	}
	usage.UserTime = cmd.ProcessState.UserTime()
	usage.SysTime = cmd.ProcessState.SystemTime()

	if ru, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage); ok {
		usage.MaxRSS = int64(ru.Maxrss) * 1024 // Linux reports maxrss in KB
	}
	return usage
}
