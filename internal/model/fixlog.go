package model

// FixAction describes what the sanitizer did.
type FixAction string

const (
	FixActionDropped          FixAction = "dropped"
	FixActionConverted        FixAction = "converted"
	FixActionPercentCorrected FixAction = "percent_corrected"
	FixActionPagesExpanded    FixAction = "pages_expanded"
)

// FixConfidence grades how certain a heuristic fix is.
type FixConfidence string

const (
	FixConfidenceHigh   FixConfidence = "high"
	FixConfidenceMedium FixConfidence = "medium"
	FixConfidenceLow    FixConfidence = "low"
)

// FixReason identifies which sanitizer heuristic fired.
type FixReason string

const (
	FixColumnHeaderAsHolding  FixReason = "COLUMN_HEADER_AS_HOLDING"
	FixHeadingRowAsHolding    FixReason = "HEADING_ROW_AS_HOLDING"
	FixUnlabeledSubtotal      FixReason = "UNLABELED_SUBTOTAL"
	FixPercentFromLabel       FixReason = "PERCENT_EXTRACTED_FROM_LABEL"
	FixLabelSeparatorStripped FixReason = "LABEL_SEPARATOR_STRIPPED"
	FixMisreadPercentAs8      FixReason = "MISREAD_PERCENT_AS_8"
	FixSummaryTableBlock      FixReason = "SUMMARY_TABLE_BLOCK_DETECTED"
	FixPageGapFilled          FixReason = "PAGE_GAP_FILLED"
)

// FixLogEntry records one sanitizer action. Entries are informational and
// reversible: dropped rows are carried in full so the original extraction
// can always be reconstructed from sanitized rows + fix log.
type FixLogEntry struct {
	// RowIdx is the index into the original row list for single-row fixes;
	// -1 for block- or page-level entries (see Rows).
	RowIdx     int           `json:"row_idx"`
	Rows       []int         `json:"rows,omitempty"`
	Action     FixAction     `json:"action"`
	Reason     FixReason     `json:"reason_code"`
	Confidence FixConfidence `json:"confidence"`
	OldValue   string        `json:"old_value,omitempty"`
	NewValue   string        `json:"new_value,omitempty"`
	Dropped    []Row         `json:"dropped_rows,omitempty"`
}
