package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RowType classifies one extracted schedule line.
type RowType string

const (
	RowTypeHolding    RowType = "HOLDING"
	RowTypeSubtotal   RowType = "SUBTOTAL"
	RowTypeTotal      RowType = "TOTAL"
	RowTypeGrandTotal RowType = "GRAND_TOTAL"
)

// Valid reports whether rt is a known row type.
func (rt RowType) Valid() bool {
	switch rt {
	case RowTypeHolding, RowTypeSubtotal, RowTypeTotal, RowTypeGrandTotal:
		return true
	}
	return false
}

// Aggregates reports whether rows of this type claim a sum over holdings
// rather than being a holding themselves.
func (rt RowType) Aggregates() bool {
	switch rt {
	case RowTypeSubtotal, RowTypeTotal, RowTypeGrandTotal:
		return true
	}
	return false
}

// BBox is an absolute bounding box on a page, in points, origin top-left.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Citation points a row back to the page region it was extracted from.
// Page is 1-based.
type Citation struct {
	Page int  `json:"page"`
	BBox BBox `json:"bbox"`
}

// Row is one extracted line of a Schedule of Investments. Numeric fields
// are independently optional: a nil pointer means the filing did not
// report that figure, which is distinct from reporting zero. The *Raw
// strings carry the literal extracted text for citation cross-checking.
type Row struct {
	SectionPath []string `json:"section_path,omitempty"`
	RowType     RowType  `json:"row_type"`
	Label       string   `json:"label,omitempty"`

	FairValue *decimal.Decimal `json:"fair_value,omitempty"`
	Cost      *decimal.Decimal `json:"cost,omitempty"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Percent   *decimal.Decimal `json:"percent,omitempty"`

	FairValueRaw string `json:"fair_value_raw,omitempty"`
	CostRaw      string `json:"cost_raw,omitempty"`
	QuantityRaw  string `json:"quantity_raw,omitempty"`
	PercentRaw   string `json:"percent_raw,omitempty"`

	Citation *Citation `json:"citation,omitempty"`
}

// HasNumeric reports whether any structured numeric field is present.
func (r Row) HasNumeric() bool {
	return r.FairValue != nil || r.Cost != nil || r.Quantity != nil || r.Percent != nil
}

// PathString renders a section path for human-readable messages.
func PathString(path []string) string {
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, " > ")
}
