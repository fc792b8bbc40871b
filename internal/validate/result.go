package validate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/sanitize"
)

// sortIssues orders the list for triage, deterministically: errors before
// warnings; within errors the arithmetic-mismatch family first, largest
// absolute diff first; then code, section path, and row refs as
// tie-breakers. Running twice on the same input yields the same order.
func sortIssues(issues []model.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]

		if a.Severity != b.Severity {
			return a.Severity == model.SeverityError
		}
		aArith, bArith := a.Code.ArithmeticCode(), b.Code.ArithmeticCode()
		if aArith != bArith {
			return aArith
		}
		if aArith && bArith {
			ad, bd := diffOrZero(a), diffOrZero(b)
			if !ad.Equal(bd) {
				return ad.GreaterThan(bd)
			}
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		ap, bp := model.PathString(a.SectionPath), model.PathString(b.SectionPath)
		if ap != bp {
			return ap < bp
		}
		return refsKey(a.RowRefs) < refsKey(b.RowRefs)
	})
}

func diffOrZero(issue model.Issue) decimal.Decimal {
	if issue.NumericDiff == nil {
		return decimal.Zero
	}
	return issue.NumericDiff.Abs()
}

func refsKey(refs []int) string {
	var b strings.Builder
	for _, r := range refs {
		// Fixed-width so lexicographic order matches numeric order.
		for div := 1000000; div >= 1; div /= 10 {
			b.WriteByte(byte('0' + (r/div)%10))
		}
		b.WriteByte(':')
	}
	return b.String()
}

// buildSummary derives the run counters. Everything here is a pure
// aggregate over the sanitized rows and the issue list; nothing is
// recomputed from the tree except the two headline fair-value figures.
func buildSummary(res sanitize.Result, issues []model.Issue, root *sectionNode, doc *model.Document) model.Summary {
	s := model.Summary{
		TotalRows:    len(res.Rows),
		IssuesByCode: make(map[model.IssueCode]int),
		FixCount:     len(res.FixLog),
	}

	for _, row := range res.Rows {
		switch row.RowType {
		case model.RowTypeHolding:
			s.HoldingCount++
		case model.RowTypeSubtotal:
			s.SubtotalCount++
		case model.RowTypeTotal:
			s.TotalCount++
		case model.RowTypeGrandTotal:
			s.GrandTotalCount++
		}
	}

	failing := make(map[string]bool)
	for _, issue := range issues {
		s.IssuesByCode[issue.Code]++
		switch issue.Severity {
		case model.SeverityError:
			s.ErrorCount++
		case model.SeverityWarning:
			s.WarningCount++
		}
		if issue.Code.ArithmeticCode() {
			s.HasArithmeticError = true
			if issue.NumericDiff != nil && issue.NumericDiff.Abs().GreaterThan(s.MaxDollarDiff) &&
				issue.Code != model.CodeArithMismatchPct &&
				issue.Code != model.CodeTotalMismatchPct &&
				issue.Code != model.CodeRootTotalMismatchPct {
				s.MaxDollarDiff = issue.NumericDiff.Abs()
			}
		}
		switch issue.Code {
		case model.CodeArithMismatchFV, model.CodeArithMismatchCost, model.CodeArithMismatchPct:
			failing[model.PathString(issue.SectionPath)] = true
		}
		if issue.Code.RootMismatchCode() {
			s.RootMismatch = true
		}
	}
	s.SectionsFailingSubtotal = len(failing)
	s.Trustworthy = s.ErrorCount == 0

	if root != nil {
		if sum, has := root.sums.get(fieldFV); has {
			calc := sum
			s.CalculatedTotalFV = &calc
		}
		anchor := root.grand
		if anchor < 0 {
			anchor = root.total
		}
		if anchor >= 0 && res.Rows[anchor].FairValue != nil {
			s.ExtractedTotalFV = res.Rows[anchor].FairValue
		} else if doc != nil && doc.NetAssets != nil {
			s.ExtractedTotalFV = doc.NetAssets
		}
	}
	return s
}
