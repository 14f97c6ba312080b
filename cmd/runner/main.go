// Command runner is the child process the orchestrator spawns once per
// job. It reads one Job as JSON on stdin, executes it, and writes one
// JobOutput as JSON on stdout. Exit code 0 means success; 101 means the
// job panicked; 102 means this build doesn't implement the requested
// algorithm family; any other nonzero code is a generic failure. A
// delivered signal is classified by the executor on the orchestrator side
// (SIGKILL as Timeout, SIGABRT as MemoryLimit).
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/pairwise-alignment/pa-bench/internal/affinity"
	"github.com/pairwise-alignment/pa-bench/internal/models"
	"github.com/pairwise-alignment/pa-bench/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("runner panicked", "panic", r)
			code = 101
		}
	}()

	var pinCoreID, nice int
	var verbose bool
	pflag.IntVar(&pinCoreID, "pin-core-id", -1, "pin this process to the given core before executing")
	pflag.IntVar(&nice, "nice", 0, "niceness to apply before executing")
	pflag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	pflag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("reading job from stdin", "error", err)
		return 1
	}

	var job models.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		slog.Error("decoding job", "error", err)
		return 1
	}

	if !runner.Supported(job.Algo.Family()) {
		slog.Debug("algorithm family not implemented by this runner", "family", job.Algo.Family())
		return 102
	}

	startCore := -1
	if pflag.CommandLine.Changed("pin-core-id") {
		if err := affinity.Pin(pinCoreID); err != nil {
			slog.Warn("pinning to core failed", "core", pinCoreID, "error", err)
		} else {
			startCore = pinCoreID
		}
	}
	if pflag.CommandLine.Changed("nice") {
		if err := affinity.SetNiceness(nice); err != nil {
			slog.Warn("setting niceness failed", "nice", nice, "error", err)
		}
	}

	stopWatchdogs := armWatchdogs(job)
	defer stopWatchdogs()

	output, err := runner.Execute(job, startCore)
	if err != nil {
		slog.Error("executing job", "error", err)
		return 1
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		slog.Error("encoding output", "error", err)
		return 1
	}
	if _, err := os.Stdout.Write(encoded); err != nil {
		slog.Error("writing output", "error", err)
		return 1
	}
	return 0
}

// armWatchdogs enforces job's resource limits from inside the process
// rather than via setrlimit: RLIMIT_CPU delivers SIGXCPU and RLIMIT_AS
// exhaustion surfaces as an uncatchable Go runtime fatal error, neither
// of which matches the SIGKILL/SIGABRT the orchestrator's executor
// expects for Timeout/MemoryLimit. Self-delivering the expected signal
// keeps the classification table in internal/executor exact.
func armWatchdogs(job models.Job) (stop func()) {
	done := make(chan struct{})
	pid := os.Getpid()

	if job.TimeLimit > 0 {
		timer := time.AfterFunc(job.TimeLimit, func() {
			slog.Warn("time limit exceeded, self-terminating", "limit", job.TimeLimit)
			_ = syscall.Kill(pid, syscall.SIGKILL)
		})
		go func() {
			<-done
			timer.Stop()
		}()
	}

	if job.MemLimit > 0 {
		go func() {
			ticker := time.NewTicker(20 * time.Millisecond)
			defer ticker.Stop()
			var mem runtime.MemStats
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					runtime.ReadMemStats(&mem)
					if int64(mem.Sys) > job.MemLimit {
						slog.Warn("memory limit exceeded, self-terminating", "limit", job.MemLimit, "sys", mem.Sys)
						_ = syscall.Kill(pid, syscall.SIGABRT)
						return
					}
				}
			}
		}()
	}

	return func() { close(done) }
}
