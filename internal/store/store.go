package store

import (
	"context"
	"time"

	"github.com/ledgerline/soi-cli/internal/model"
)

// RunFilter specifies criteria for listing validation runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	SourceFile   string          `json:"source_file,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for validation runs.
type Store interface {
	CreateRun(ctx context.Context, sourceFile, jobID string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.Report) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// IssueCodeCounts aggregates issue counts by code over runs created
	// after the cutoff (zero time means all runs).
	IssueCodeCounts(ctx context.Context, createdAfter time.Time) (map[model.IssueCode]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
