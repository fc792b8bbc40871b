package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/numeric"
)

// digitOverlapFloor is the fraction of shared digits below which a
// raw-vs-structured disagreement is treated as fabricated rather than a
// formatting quirk.
const digitOverlapFloor = 0.5

var (
	priceFloor   = decimal.NewFromFloat(0.0001)
	priceCeiling = decimal.NewFromInt(1_000_000)
)

// derivativeVocab marks labels where a negative fair value is a
// legitimate liability position, not an extraction error.
var derivativeVocab = []string{
	"option", "put", "call", "swap", "forward", "future",
	"short", "written", "sold", "liability", "payable", "collateral",
}

// checkCitations runs the per-row provenance and plausibility predicates.
// Independent of the tree: every check is a pure function over one row.
// soiPages is the sanitizer-expanded page set.
func checkCitations(rows []model.Row, doc *model.Document, soiPages []int) []model.Issue {
	var issues []model.Issue

	soiSet := make(map[int]bool, len(soiPages))
	for _, p := range soiPages {
		soiSet[p] = true
	}

	for i, row := range rows {
		if !row.RowType.Valid() {
			issue := model.NewIssue(model.CodeMissingRowType,
				fmt.Sprintf("row %d (%q) has no recognizable row type", i, row.Label))
			issue.RowRefs = []int{i}
			issue.SectionPath = row.SectionPath
			issues = append(issues, issue)
		}

		issues = append(issues, checkRawValues(i, row)...)
		issues = append(issues, checkBBox(i, row, doc, soiSet)...)
		issues = append(issues, checkPlausibility(i, row)...)
	}

	if issue := checkDates(doc); issue != nil {
		issues = append(issues, *issue)
	}
	return issues
}

// checkRawValues re-parses each raw literal and compares it to the
// structured value extracted from it. A disagreement with less than half
// the digits in common is fabricated provenance (ERROR); otherwise it is
// a formatting-level discrepancy (WARNING).
func checkRawValues(idx int, row model.Row) []model.Issue {
	var issues []model.Issue
	pairs := []struct {
		name   string
		raw    string
		parsed *decimal.Decimal
	}{
		{"fair_value", row.FairValueRaw, row.FairValue},
		{"cost", row.CostRaw, row.Cost},
		{"quantity", row.QuantityRaw, row.Quantity},
		{"percent", row.PercentRaw, row.Percent},
	}

	for _, p := range pairs {
		if p.raw == "" || p.parsed == nil {
			continue
		}
		reparsed, err := numeric.ParseDecimal(p.raw)
		if err != nil || reparsed == nil {
			issue := model.NewIssue(model.CodeCitationValueMismatch, fmt.Sprintf(
				"row %d: %s %s present but raw text %q does not parse",
				idx, p.name, p.parsed.String(), p.raw))
			issue.RowRefs = []int{idx}
			issue.SectionPath = row.SectionPath
			issues = append(issues, issue)
			continue
		}
		if reparsed.Equal(*p.parsed) {
			continue
		}

		issue := model.Issue{
			Code:     model.CodeCitationValueMismatch,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf("row %d: %s %s disagrees with cited text %q (parses to %s)",
				idx, p.name, p.parsed.String(), p.raw, reparsed.String()),
			RowRefs:     []int{idx},
			SectionPath: row.SectionPath,
		}
		if numeric.DigitOverlap(p.raw, p.parsed.String()) < digitOverlapFloor {
			issue.Severity = model.SeverityError
		}
		diff := reparsed.Sub(*p.parsed).Abs()
		issue.NumericDiff = &diff
		issues = append(issues, issue)
	}
	return issues
}

// checkBBox validates the citation's page membership and bounding box
// against the document geometry.
func checkBBox(idx int, row model.Row, doc *model.Document, soiSet map[int]bool) []model.Issue {
	if row.Citation == nil {
		return nil
	}
	var issues []model.Issue
	cit := row.Citation

	pageKnown := doc != nil && doc.NumPages > 0
	if cit.Page < 1 || (pageKnown && cit.Page > doc.NumPages) {
		issue := model.NewIssue(model.CodeBBoxPageOutOfRange, fmt.Sprintf(
			"row %d cites page %d of a %d-page document", idx, cit.Page, docPages(doc)))
		issue.RowRefs = []int{idx}
		issue.SectionPath = row.SectionPath
		issues = append(issues, issue)
	} else {
		dims := doc.PageDim(cit.Page)
		b := cit.BBox
		if b.X0 < 0 || b.Y0 < 0 || b.X1 > dims.Width || b.Y1 > dims.Height || b.X1 < b.X0 || b.Y1 < b.Y0 {
			issue := model.NewIssue(model.CodeBBoxOutOfRange, fmt.Sprintf(
				"row %d bbox (%.1f,%.1f,%.1f,%.1f) exceeds page %d bounds %.0fx%.0f",
				idx, b.X0, b.Y0, b.X1, b.Y1, cit.Page, dims.Width, dims.Height))
			issue.RowRefs = []int{idx}
			issue.SectionPath = row.SectionPath
			issues = append(issues, issue)
		}
	}

	if len(soiSet) > 0 && !soiSet[cit.Page] {
		issue := model.NewIssue(model.CodeRowFromNonSOIPage, fmt.Sprintf(
			"row %d cites page %d, outside the schedule pages", idx, cit.Page))
		issue.RowRefs = []int{idx}
		issue.SectionPath = row.SectionPath
		issues = append(issues, issue)
	}
	return issues
}

// checkPlausibility flags values that are structurally fine but out of
// domain: negative fair values on non-derivative positions and implied
// unit prices outside the plausible band.
func checkPlausibility(idx int, row model.Row) []model.Issue {
	var issues []model.Issue

	if row.FairValue != nil && row.FairValue.Sign() < 0 && !hasDerivativeVocab(row.Label) {
		issue := model.NewIssue(model.CodeNegativeFairValue, fmt.Sprintf(
			"row %d (%q) reports negative fair value %s", idx, row.Label, row.FairValue.String()))
		issue.RowRefs = []int{idx}
		issue.SectionPath = row.SectionPath
		issues = append(issues, issue)
	}

	if row.RowType == model.RowTypeHolding &&
		row.FairValue != nil && row.FairValue.Sign() > 0 &&
		row.Quantity != nil && row.Quantity.Sign() > 0 {
		price := row.FairValue.Div(*row.Quantity)
		switch {
		case price.Cmp(priceFloor) < 0:
			issue := model.NewIssue(model.CodePriceTooLow, fmt.Sprintf(
				"row %d (%q): implied unit price %s below plausible floor", idx, row.Label, price.String()))
			issue.RowRefs = []int{idx}
			issue.SectionPath = row.SectionPath
			issues = append(issues, issue)
		case price.Cmp(priceCeiling) > 0:
			issue := model.NewIssue(model.CodePriceTooHigh, fmt.Sprintf(
				"row %d (%q): implied unit price %s above plausible ceiling", idx, row.Label, price.String()))
			issue.RowRefs = []int{idx}
			issue.SectionPath = row.SectionPath
			issues = append(issues, issue)
		}
	}
	return issues
}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
}

// checkDates compares the filing's metadata period end with the date the
// extractor read off the cover page. Only fires when both parse.
func checkDates(doc *model.Document) *model.Issue {
	if doc == nil || doc.PeriodEnd == "" || doc.CoverDate == "" {
		return nil
	}
	period, ok1 := parseDate(doc.PeriodEnd)
	cover, ok2 := parseDate(doc.CoverDate)
	if !ok1 || !ok2 {
		return nil
	}
	if period.Year() == cover.Year() && period.Month() == cover.Month() && period.Day() == cover.Day() {
		return nil
	}
	issue := model.NewIssue(model.CodeDateMismatch, fmt.Sprintf(
		"filing period end %q disagrees with cover page date %q", doc.PeriodEnd, doc.CoverDate))
	return &issue
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasDerivativeVocab(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range derivativeVocab {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func docPages(doc *model.Document) int {
	if doc == nil {
		return 0
	}
	return doc.NumPages
}
