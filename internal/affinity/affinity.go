// Package affinity pins the calling OS thread to a single CPU core and
// adjusts its scheduling niceness, the mechanism the worker pool (C4)
// uses to give each thread a dedicated core before it starts popping
// jobs off the queue.
package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its current OS thread and restricts
// that thread to running on core. Callers must invoke this from the
// goroutine that will do the work (affinity is a property of the OS
// thread, not the goroutine, and Go goroutines move between threads
// unless locked).
func Pin(core int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pinning to core %d: %w", core, err)
	}
	return nil
}

// SetNiceness adjusts the calling thread's scheduling priority. Positive
// values lower priority, negative values raise it (and typically require
// elevated privileges).
func SetNiceness(nice int) error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, nice); err != nil {
		return fmt.Errorf("setting niceness %d: %w", nice, err)
	}
	return nil
}
