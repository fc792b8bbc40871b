package model

import "time"

// RunStatus tracks a persisted validation run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted validation of a document. Failed runs carry the
// load/decode error; completed runs carry the summary and full report.
type Run struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"source_file"`
	JobID      string    `json:"job_id,omitempty"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	Summary    *Summary  `json:"summary,omitempty"`
	Report     *Report   `json:"report,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
