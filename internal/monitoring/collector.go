// Package monitoring aggregates stored validation runs into a health
// snapshot for the status command and the API health endpoint.
package monitoring

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/store"
)

// CodeCount is one issue code's occurrence total within the window.
type CodeCount struct {
	Code  model.IssueCode `json:"code"`
	Count int             `json:"count"`
}

// MetricsSnapshot holds a point-in-time view of validation health.
type MetricsSnapshot struct {
	// Run metrics (within lookback window).
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	FailRate     float64 `json:"fail_rate"`

	// Validation outcome metrics over completed runs.
	Trustworthy     int     `json:"trustworthy"`
	TrustworthyRate float64 `json:"trustworthy_rate"`
	TotalErrors     int     `json:"total_errors"`
	TotalWarnings   int     `json:"total_warnings"`
	RootMismatches  int     `json:"root_mismatches"`

	// TopIssues lists the most frequent issue codes, descending.
	TopIssues []CodeCount `json:"top_issues,omitempty"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the run store.
type Collector struct {
	store store.Store

	// TopN caps the issue-code list; zero means the default of 10.
	TopN int
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of validation health over the given lookback
// window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		if r.Summary == nil {
			continue
		}
		snap.TotalErrors += r.Summary.ErrorCount
		snap.TotalWarnings += r.Summary.WarningCount
		if r.Summary.Trustworthy {
			snap.Trustworthy++
		}
		if r.Summary.RootMismatch {
			snap.RootMismatches++
		}
	}

	finished := snap.RunsComplete + snap.RunsFailed
	if finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if snap.RunsComplete > 0 {
		snap.TrustworthyRate = float64(snap.Trustworthy) / float64(snap.RunsComplete)
	}

	counts, err := c.store.IssueCodeCounts(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: issue code counts")
	}
	snap.TopIssues = topCounts(counts, c.topN())

	return snap, nil
}

func (c *Collector) topN() int {
	if c.TopN > 0 {
		return c.TopN
	}
	return 10
}

func topCounts(counts map[model.IssueCode]int, n int) []CodeCount {
	out := make([]CodeCount, 0, len(counts))
	for code, count := range counts {
		out = append(out, CodeCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
