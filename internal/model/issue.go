package model

import "github.com/shopspring/decimal"

// Severity ranks an issue's impact. ERROR blocks a document from being
// marked trustworthy; WARNING is advisory.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// IssueCode identifies one anomaly class. The vocabulary is closed: every
// code the pipeline can emit is declared here and registered in
// severityByCode.
type IssueCode string

const (
	// Arithmetic mismatches: a computed sum disagrees with a reported
	// value beyond tolerance.
	CodeArithMismatchFV       IssueCode = "ARITH_MISMATCH_FV"
	CodeArithMismatchCost     IssueCode = "ARITH_MISMATCH_COST"
	CodeArithMismatchPct      IssueCode = "ARITH_MISMATCH_PCT"
	CodeTotalMismatchFV       IssueCode = "TOTAL_MISMATCH_FV"
	CodeTotalMismatchCost     IssueCode = "TOTAL_MISMATCH_COST"
	CodeTotalMismatchPct      IssueCode = "TOTAL_MISMATCH_PCT"
	CodeRootTotalMismatchFV   IssueCode = "ROOT_TOTAL_MISMATCH_FV"
	CodeRootTotalMismatchCost IssueCode = "ROOT_TOTAL_MISMATCH_COST"
	CodeRootTotalMismatchPct  IssueCode = "ROOT_TOTAL_MISMATCH_PCT"
	CodeGrandTotalMismatchFV  IssueCode = "GRAND_TOTAL_MISMATCH_FV"
	CodeShiftedSubtotal       IssueCode = "SHIFTED_SUBTOTAL_DETECTED"

	// Structural mismatches: the hierarchy itself is malformed.
	CodeMissingSubtotal      IssueCode = "MISSING_SUBTOTAL"
	CodeSubtotalMissingLabel IssueCode = "SUBTOTAL_MISSING_LABEL"
	CodeTotalMissingNumeric  IssueCode = "TOTAL_MISSING_NUMERIC"
	CodeOrphanedTotal        IssueCode = "ORPHANED_TOTAL"
	CodeSubtotalPathMismatch IssueCode = "SUBTOTAL_PATH_MISMATCH"
	CodeTotalPathMismatch    IssueCode = "TOTAL_PATH_MISMATCH"
	CodeMissingRowType       IssueCode = "MISSING_ROW_TYPE"
	CodeNoRowsExtracted      IssueCode = "NO_ROWS_EXTRACTED"

	// Provenance mismatches: extraction traceability is broken.
	CodeCitationValueMismatch IssueCode = "CITATION_VALUE_MISMATCH"
	CodeBBoxOutOfRange        IssueCode = "BBOX_OUT_OF_RANGE"
	CodeBBoxPageOutOfRange    IssueCode = "BBOX_PAGE_OUT_OF_RANGE"
	CodeRowFromNonSOIPage     IssueCode = "ROW_FROM_NON_SOI_PAGE"

	// Plausibility flags: values are structurally fine but suspicious.
	CodeNegativeFairValue         IssueCode = "NEGATIVE_FAIR_VALUE"
	CodePriceTooLow               IssueCode = "PRICE_TOO_LOW"
	CodePriceTooHigh              IssueCode = "PRICE_TOO_HIGH"
	CodeSuspiciousNegativePercent IssueCode = "SUSPICIOUS_NEGATIVE_PERCENT"
	CodePossibleDuplicateHoldings IssueCode = "POSSIBLE_DUPLICATE_HOLDINGS"
	CodeDateMismatch              IssueCode = "DATE_MISMATCH"

	// Sanitizer actions: informational, not failures.
	CodeNormalizationApplied IssueCode = "NORMALIZATION_APPLIED"
	CodeSummaryTableDetected IssueCode = "SUMMARY_TABLE_BLOCK_DETECTED"
)

// severityByCode is the single source of truth for issue severities.
var severityByCode = map[IssueCode]Severity{
	CodeArithMismatchFV:       SeverityError,
	CodeArithMismatchCost:     SeverityError,
	CodeArithMismatchPct:      SeverityWarning,
	CodeTotalMismatchFV:       SeverityError,
	CodeTotalMismatchCost:     SeverityError,
	CodeTotalMismatchPct:      SeverityWarning,
	CodeRootTotalMismatchFV:   SeverityError,
	CodeRootTotalMismatchCost: SeverityError,
	CodeRootTotalMismatchPct:  SeverityWarning,
	CodeGrandTotalMismatchFV:  SeverityError,
	CodeShiftedSubtotal:       SeverityWarning,

	CodeMissingSubtotal:      SeverityWarning,
	CodeSubtotalMissingLabel: SeverityWarning,
	CodeTotalMissingNumeric:  SeverityWarning,
	CodeOrphanedTotal:        SeverityWarning,
	CodeSubtotalPathMismatch: SeverityWarning,
	CodeTotalPathMismatch:    SeverityWarning,
	CodeMissingRowType:       SeverityWarning,
	CodeNoRowsExtracted:      SeverityError,

	CodeCitationValueMismatch: SeverityWarning, // escalated to ERROR on low digit overlap
	CodeBBoxOutOfRange:        SeverityWarning,
	CodeBBoxPageOutOfRange:    SeverityError,
	CodeRowFromNonSOIPage:     SeverityWarning,

	CodeNegativeFairValue:         SeverityWarning,
	CodePriceTooLow:               SeverityWarning,
	CodePriceTooHigh:              SeverityWarning,
	CodeSuspiciousNegativePercent: SeverityWarning,
	CodePossibleDuplicateHoldings: SeverityWarning,
	CodeDateMismatch:              SeverityWarning,

	CodeNormalizationApplied: SeverityWarning,
	CodeSummaryTableDetected: SeverityWarning,
}

// SeverityFor returns the registered severity for code, defaulting to
// WARNING for anything unregistered.
func SeverityFor(code IssueCode) Severity {
	if sev, ok := severityByCode[code]; ok {
		return sev
	}
	return SeverityWarning
}

// ArithmeticCode reports whether code belongs to the arithmetic-mismatch
// family (used for ordering and the summary counters).
func (c IssueCode) ArithmeticCode() bool {
	switch c {
	case CodeArithMismatchFV, CodeArithMismatchCost, CodeArithMismatchPct,
		CodeTotalMismatchFV, CodeTotalMismatchCost, CodeTotalMismatchPct,
		CodeRootTotalMismatchFV, CodeRootTotalMismatchCost, CodeRootTotalMismatchPct,
		CodeGrandTotalMismatchFV:
		return true
	}
	return false
}

// RootMismatchCode reports whether code indicates the document-level
// reconciliation ("subtotals sum to grand total") failed.
func (c IssueCode) RootMismatchCode() bool {
	switch c {
	case CodeRootTotalMismatchFV, CodeRootTotalMismatchCost, CodeRootTotalMismatchPct,
		CodeGrandTotalMismatchFV:
		return true
	}
	return false
}

// Issue is one classified anomaly. Immutable once created; RowRefs index
// into the sanitized row list the issue was produced from.
type Issue struct {
	Code        IssueCode        `json:"code"`
	Severity    Severity         `json:"severity"`
	Message     string           `json:"message"`
	RowRefs     []int            `json:"row_refs,omitempty"`
	SectionPath []string         `json:"section_path,omitempty"`
	NumericDiff *decimal.Decimal `json:"numeric_diff,omitempty"`
}

// NewIssue constructs an Issue with the registered severity for code.
func NewIssue(code IssueCode, message string) Issue {
	return Issue{Code: code, Severity: SeverityFor(code), Message: message}
}
