// Package sessionlog implements the session logger (C7): an append-only
// history of each executed batch, written before it is merged into the
// persistent corpus.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

// Write records batch verbatim under logsDir, named
// <experimentStem>_<ISO8601-timestamp>_<runID>.json with the timestamp
// truncated to second precision in local time. The trailing run ID
// disambiguates two sessions over the same experiment that finish within
// the same second.
func Write(logsDir, experimentPath string, batch []models.JobResult, now time.Time) (string, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating logs directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(experimentPath), filepath.Ext(experimentPath))
	stamp := now.Local().Truncate(time.Second).Format("20060102T150405")
	runID := uuid.New().String()[:8]
	name := fmt.Sprintf("%s_%s_%s.json", stem, stamp, runID)
	path := filepath.Join(logsDir, name)

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling session log batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing session log %s: %w", path, err)
	}
	return path, nil
}
