// Package sanitize repairs extraction artifacts before reconciliation:
// phantom rows (column headers and section headings misread as holdings),
// percent OCR damage, spurious summary-table blocks, and under-covered
// SOI page sets. Every action is recorded in an ordered fix log; dropped
// rows are carried in the log in full, so sanitization is reversible and
// the original extraction stays reconstructable.
package sanitize

import (
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/model"
)

// indexedRow pairs a working row with its index in the original
// extraction, so fix-log entries keep pointing at the input even after
// earlier passes have dropped neighbors.
type indexedRow struct {
	idx int
	row model.Row
}

// Result is the sanitizer output. Rows is a fresh slice; the input
// document is never mutated.
type Result struct {
	Rows     []model.Row         `json:"rows"`
	FixLog   []model.FixLogEntry `json:"fix_log,omitempty"`
	SOIPages []int               `json:"soi_pages,omitempty"`

	DroppedCount          int `json:"dropped_count"`
	ConvertedCount        int `json:"converted_count"`
	PercentCorrectedCount int `json:"percent_corrected_count"`
}

// FixCount returns the total number of fix-log entries.
func (r Result) FixCount() int { return len(r.FixLog) }

// Run applies the enabled passes in a fixed order: phantom-row repair,
// percent repair, summary-block removal, then page-gap repair. Order
// matters: label cleanup must precede summary-keyword matching, and
// summary blocks must be detected on repaired rows.
func Run(doc *model.Document, opts Options) Result {
	work := make([]indexedRow, len(doc.Rows))
	for i, row := range doc.Rows {
		work[i] = indexedRow{idx: i, row: row}
	}

	var log []model.FixLogEntry

	if opts.FixPhantomRows {
		work, log = fixPhantomRows(work, log, opts.Keywords.ColumnHeaders)
	}
	if opts.FixPercents {
		work, log = fixPercents(work, log)
	}
	if opts.DropSummaryTables {
		work, log = dropSummaryBlocks(work, log, opts)
	}

	pages := append([]int(nil), doc.SOIPages...)
	if opts.RepairPageGaps {
		pages, log = repairPageGaps(pages, log, opts.CoverageThreshold, opts.GapFillBound)
	}

	res := Result{
		Rows:     make([]model.Row, len(work)),
		FixLog:   log,
		SOIPages: pages,
	}
	for i, ir := range work {
		res.Rows[i] = ir.row
	}
	for _, entry := range log {
		switch entry.Action {
		case model.FixActionDropped:
			// Drop entries always carry the dropped rows for reversibility.
			res.DroppedCount += len(entry.Dropped)
		case model.FixActionConverted:
			res.ConvertedCount++
		case model.FixActionPercentCorrected:
			res.PercentCorrectedCount++
		}
	}

	if len(log) > 0 {
		zap.L().Debug("sanitizer applied fixes",
			zap.Int("fixes", len(log)),
			zap.Int("dropped", res.DroppedCount),
			zap.Int("converted", res.ConvertedCount),
			zap.Int("percent_corrected", res.PercentCorrectedCount),
		)
	}
	return res
}
