package sanitize

import "github.com/shopspring/decimal"

// Options configures the sanitizer. Every pass is independently
// toggleable; the zero value disables everything, so callers should start
// from DefaultOptions.
type Options struct {
	// FixPhantomRows enables the per-row repair heuristics (column
	// headers extracted as holdings, section headings as holdings,
	// unlabeled subtotals, label cleanup).
	FixPhantomRows bool `json:"fix_phantom_rows"`

	// FixPercents enables percent repair (percent lifted from labels,
	// trailing-8 OCR artifacts).
	FixPercents bool `json:"fix_percents"`

	// DropSummaryTables enables summary-block detection. A block is
	// dropped only when its terminating total's percent is below
	// SummaryPercentThreshold AND a summary keyword matches; percent
	// alone never drops a block.
	DropSummaryTables       bool            `json:"drop_summary_tables"`
	SummaryPercentThreshold decimal.Decimal `json:"summary_percent_threshold"`

	// RepairPageGaps enables SOI page-coverage repair. Coverage below
	// CoverageThreshold fills the whole min..max range; otherwise only
	// gaps no wider than GapFillBound pages are filled.
	RepairPageGaps    bool    `json:"repair_page_gaps"`
	CoverageThreshold float64 `json:"coverage_threshold"`
	GapFillBound      int     `json:"gap_fill_bound"`

	Keywords KeywordConfig `json:"keywords"`
}

// DefaultOptions returns the production defaults: all passes on, 50%
// summary threshold, 70% coverage threshold, 3-page gap-fill bound.
func DefaultOptions() Options {
	return Options{
		FixPhantomRows:          true,
		FixPercents:             true,
		DropSummaryTables:       true,
		SummaryPercentThreshold: decimal.NewFromInt(50),
		RepairPageGaps:          true,
		CoverageThreshold:       0.70,
		GapFillBound:            3,
		Keywords:                DefaultKeywords(),
	}
}
