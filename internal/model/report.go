package model

import "github.com/shopspring/decimal"

// Summary holds the pure aggregates over one run's issue list and row
// set. Nothing here is computed independently of the issues.
type Summary struct {
	TotalRows       int `json:"total_rows"`
	HoldingCount    int `json:"holding_count"`
	SubtotalCount   int `json:"subtotal_count"`
	TotalCount      int `json:"total_count"`
	GrandTotalCount int `json:"grand_total_count"`

	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	IssuesByCode map[IssueCode]int `json:"issues_by_code,omitempty"`

	// SectionsFailingSubtotal counts distinct section paths carrying an
	// ARITH_MISMATCH_* issue ("holdings sum to subtotal" failures).
	SectionsFailingSubtotal int `json:"sections_failing_subtotal"`
	// RootMismatch is true when any root-level reconciliation failed
	// ("subtotals sum to grand total").
	RootMismatch       bool `json:"root_mismatch"`
	HasArithmeticError bool `json:"has_arithmetic_error"`

	MaxDollarDiff     decimal.Decimal  `json:"max_dollar_diff"`
	CalculatedTotalFV *decimal.Decimal `json:"calculated_total_fv,omitempty"`
	ExtractedTotalFV  *decimal.Decimal `json:"extracted_total_fv,omitempty"`

	FixCount int `json:"fix_count"`

	// Trustworthy is the gate consumers act on: no ERROR-severity issues.
	Trustworthy bool `json:"trustworthy"`
}

// Report is the complete output of validating one document.
type Report struct {
	JobID      string `json:"job_id,omitempty"`
	SourceFile string `json:"source_file,omitempty"`

	SanitizedRows []Row         `json:"sanitized_rows"`
	FixLog        []FixLogEntry `json:"fix_log,omitempty"`
	SOIPages      []int         `json:"soi_pages,omitempty"`

	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}
