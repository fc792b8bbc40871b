package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/store"
)

// mockStore implements store.Store for testing.
type mockStore struct {
	runs      []model.Run
	counts    map[model.IssueCode]int
	listErr   error
	countsErr error
}

func (m *mockStore) ListRuns(_ context.Context, filter store.RunFilter) ([]model.Run, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var filtered []model.Run
	for _, r := range m.runs {
		if !filter.CreatedAfter.IsZero() && r.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func (m *mockStore) IssueCodeCounts(context.Context, time.Time) (map[model.IssueCode]int, error) {
	return m.counts, m.countsErr
}

// Unused store methods — satisfy the interface.
func (m *mockStore) CreateRun(context.Context, string, string) (*model.Run, error) { return nil, nil }
func (m *mockStore) CompleteRun(context.Context, string, *model.Report) error      { return nil }
func (m *mockStore) FailRun(context.Context, string, error) error                  { return nil }
func (m *mockStore) GetRun(context.Context, string) (*model.Run, error)            { return nil, nil }
func (m *mockStore) Migrate(context.Context) error                                 { return nil }
func (m *mockStore) Close() error                                                  { return nil }

func summaryWith(trustworthy bool, errors, warnings int, rootMismatch bool) *model.Summary {
	return &model.Summary{
		ErrorCount:   errors,
		WarningCount: warnings,
		Trustworthy:  trustworthy,
		RootMismatch: rootMismatch,
	}
}

func TestCollect(t *testing.T) {
	now := time.Now().UTC()
	st := &mockStore{
		runs: []model.Run{
			{ID: "1", Status: model.RunStatusComplete, CreatedAt: now, Summary: summaryWith(true, 0, 2, false)},
			{ID: "2", Status: model.RunStatusComplete, CreatedAt: now, Summary: summaryWith(false, 3, 1, true)},
			{ID: "3", Status: model.RunStatusFailed, CreatedAt: now},
			{ID: "4", Status: model.RunStatusRunning, CreatedAt: now},
			// Outside the lookback window.
			{ID: "5", Status: model.RunStatusFailed, CreatedAt: now.Add(-48 * time.Hour)},
		},
		counts: map[model.IssueCode]int{
			model.CodeArithMismatchFV: 3,
			model.CodeMissingSubtotal: 1,
		},
	}

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.RunsTotal)
	assert.Equal(t, 2, snap.RunsComplete)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.Equal(t, 1, snap.RunsRunning)
	assert.InDelta(t, 1.0/3.0, snap.FailRate, 0.0001)

	assert.Equal(t, 1, snap.Trustworthy)
	assert.InDelta(t, 0.5, snap.TrustworthyRate, 0.0001)
	assert.Equal(t, 3, snap.TotalErrors)
	assert.Equal(t, 3, snap.TotalWarnings)
	assert.Equal(t, 1, snap.RootMismatches)

	require.Len(t, snap.TopIssues, 2)
	assert.Equal(t, model.CodeArithMismatchFV, snap.TopIssues[0].Code)
	assert.Equal(t, 3, snap.TopIssues[0].Count)

	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollect_Empty(t *testing.T) {
	snap, err := NewCollector(&mockStore{}).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Zero(t, snap.RunsTotal)
	assert.Zero(t, snap.FailRate)
	assert.Zero(t, snap.TrustworthyRate)
	assert.Empty(t, snap.TopIssues)
}

func TestCollect_TopNCap(t *testing.T) {
	counts := make(map[model.IssueCode]int)
	for _, code := range []model.IssueCode{
		model.CodeArithMismatchFV,
		model.CodeArithMismatchCost,
		model.CodeMissingSubtotal,
	} {
		counts[code] = 1
	}

	c := NewCollector(&mockStore{counts: counts})
	c.TopN = 2

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, snap.TopIssues, 2)
}

func TestCollect_ListError(t *testing.T) {
	st := &mockStore{listErr: assert.AnError}
	_, err := NewCollector(st).Collect(context.Background(), 24)
	assert.Error(t, err)
}

func TestCollect_CountsError(t *testing.T) {
	st := &mockStore{countsErr: assert.AnError}
	_, err := NewCollector(st).Collect(context.Background(), 24)
	assert.Error(t, err)
}
