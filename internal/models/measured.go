package models

import "time"

// Measured is produced by the runner and passed through unchanged: the
// orchestrator never computes these fields itself.
type Measured struct {
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	StartCore    int       `json:"start_core"`
	EndCore      int       `json:"end_core"`
	StartFreqMHz float64   `json:"start_freq_mhz"`
	EndFreqMHz   float64   `json:"end_freq_mhz"`
}

// ResourceUsage is the OS-level rusage plus wall-clock measurement the
// executor collects for every spawned child, regardless of outcome.
type ResourceUsage struct {
	WallTime time.Duration `json:"wall_time_ns"`
	UserTime time.Duration `json:"user_time_ns"`
	SysTime  time.Duration `json:"sys_time_ns"`
	MaxRSS   int64         `json:"max_rss_bytes"`
}
