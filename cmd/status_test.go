package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/monitoring"
)

func TestFormatSnapshot(t *testing.T) {
	snap := &monitoring.MetricsSnapshot{
		RunsTotal:       12,
		RunsComplete:    9,
		RunsFailed:      2,
		RunsRunning:     1,
		FailRate:        2.0 / 11.0,
		Trustworthy:     6,
		TrustworthyRate: 6.0 / 9.0,
		TotalErrors:     14,
		TotalWarnings:   40,
		RootMismatches:  3,
		TopIssues: []monitoring.CodeCount{
			{Code: model.CodeArithMismatchFV, Count: 8},
			{Code: model.CodeMissingSubtotal, Count: 4},
		},
		LookbackHours: 24,
		CollectedAt:   time.Now().UTC(),
	}

	var buf bytes.Buffer
	formatSnapshot(&buf, snap)

	output := buf.String()
	assert.Contains(t, output, "last 24h")
	assert.Contains(t, output, "12 (9 complete, 2 failed, 1 running)")
	assert.Contains(t, output, "18.2%")
	assert.Contains(t, output, "66.7% of complete")
	assert.Contains(t, output, "14 errors, 40 warnings")
	assert.Contains(t, output, "Root mismatches:")
	assert.Contains(t, output, "ARITH_MISMATCH_FV")
	assert.Contains(t, output, "MISSING_SUBTOTAL")
}

func TestFormatSnapshot_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	formatSnapshot(&buf, &monitoring.MetricsSnapshot{LookbackHours: 72})

	output := buf.String()
	assert.Contains(t, output, "last 72h")
	assert.NotContains(t, output, "Top issues")
}
