// Package report turns a search-loop improvement event into operator-facing
// output: a structured log line, and, optionally, a JSON snapshot of the
// current best program written to disk for external observability.
package report

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/distractedlambda/bitsy/internal/program"
)

// Snapshot is the JSON shape written to the report file, if configured.
type Snapshot struct {
	RunID   string  `json:"run_id"`
	Loss    uint64  `json:"loss"`
	AvgLoss float64 `json:"avg_loss"`
	Program string  `json:"program"`
}

// Reporter formats "new best" events for the operator: always logged
// through Log, and optionally persisted as a JSON snapshot at ReportFile
// (overwritten on every ReportInterval'th improvement, never appended).
type Reporter struct {
	Log        *logrus.Logger
	RunID      string
	ReportFile string

	// ReportInterval is how many improvements elapse between snapshot
	// writes to ReportFile. Every improvement is still logged; this only
	// throttles the file write. Values <= 1 snapshot every improvement.
	ReportInterval int

	improvements int
}

// Improvement reports that loss (with per-lane average avgLoss) is a new
// best, achieved by program p. A failure to write the optional report file
// is logged as a warning and does not stop the search.
func (r *Reporter) Improvement(loss uint64, avgLoss float64, p program.Program) {
	r.Log.WithFields(logrus.Fields{
		"run_id":   r.RunID,
		"loss":     loss,
		"avg_loss": avgLoss,
	}).Infof("New best, avg. loss = %f: %s", avgLoss, p)

	if r.ReportFile == "" {
		return
	}

	r.improvements++
	interval := r.ReportInterval
	if interval <= 1 {
		interval = 1
	}
	if r.improvements%interval != 0 {
		return
	}

	snapshot := Snapshot{
		RunID:   r.RunID,
		Loss:    loss,
		AvgLoss: avgLoss,
		Program: p.String(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		r.Log.WithError(errors.Wrap(err, "marshal report snapshot")).Warn("failed to marshal report snapshot")
		return
	}

	if err := os.WriteFile(r.ReportFile, data, 0o644); err != nil {
		r.Log.WithError(errors.Wrap(err, "write report file")).Warn("failed to write report file")
	}
}
