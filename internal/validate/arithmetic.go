package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/numeric"
)

var arithCodes = map[field]model.IssueCode{
	fieldFV:   model.CodeArithMismatchFV,
	fieldCost: model.CodeArithMismatchCost,
	fieldPct:  model.CodeArithMismatchPct,
}

var totalCodes = map[field]model.IssueCode{
	fieldFV:   model.CodeTotalMismatchFV,
	fieldCost: model.CodeTotalMismatchCost,
	fieldPct:  model.CodeTotalMismatchPct,
}

var rootCodes = map[field]model.IssueCode{
	fieldFV:   model.CodeRootTotalMismatchFV,
	fieldCost: model.CodeRootTotalMismatchCost,
	fieldPct:  model.CodeRootTotalMismatchPct,
}

// arithChecker carries the shared state of one reconciliation pass.
type arithChecker struct {
	rows   []model.Row
	tol    numeric.ToleranceConfig
	issues []model.Issue
}

// checkArithmetic runs the bottom-up reconciliation over a tree whose
// sums have already been computed, plus the document-level root anchors.
func checkArithmetic(root *sectionNode, rows []model.Row, doc *model.Document, tol numeric.ToleranceConfig) []model.Issue {
	c := &arithChecker{rows: rows, tol: tol}
	c.walk(root, nil)
	c.checkRoot(root, doc)
	c.checkNegativePercents()
	return c.issues
}

func (c *arithChecker) walk(n *sectionNode, parent *sectionNode) {
	for _, child := range n.children {
		c.walk(child, n)
	}

	isRoot := parent == nil
	if n.subtotal >= 0 {
		c.compareAggregate(n, parent, n.subtotal, arithCodes)
	}
	if n.total >= 0 && !isRoot {
		c.compareAggregate(n, parent, n.total, totalCodes)
	}

	// Leaf sections with holdings but no aggregate row of any kind have
	// nothing to reconcile against; interior nodes are not flagged (many
	// filings only total the top level).
	if !isRoot && len(n.holdings) > 0 && len(n.children) == 0 && n.subtotal < 0 && n.total < 0 {
		issue := model.NewIssue(model.CodeMissingSubtotal,
			"section "+model.PathString(n.path)+" has holdings but no subtotal row")
		issue.SectionPath = n.path
		c.issues = append(c.issues, issue)
	}
}

// compareAggregate checks one subtotal/total row against the node's
// computed sums, field by field.
func (c *arithChecker) compareAggregate(n *sectionNode, parent *sectionNode, rowIdx int, codes map[field]model.IssueCode) {
	row := c.rows[rowIdx]

	if row.RowType == model.RowTypeSubtotal && row.Label == "" {
		issue := model.NewIssue(model.CodeSubtotalMissingLabel,
			"subtotal at "+model.PathString(n.path)+" has no label")
		issue.RowRefs = []int{rowIdx}
		issue.SectionPath = n.path
		c.issues = append(c.issues, issue)
	}
	if row.FairValue == nil && row.Cost == nil {
		issue := model.NewIssue(model.CodeTotalMissingNumeric,
			string(row.RowType)+" at "+model.PathString(n.path)+" carries no parseable value")
		issue.RowRefs = []int{rowIdx}
		issue.SectionPath = n.path
		c.issues = append(c.issues, issue)
	}

	for _, f := range []field{fieldFV, fieldCost, fieldPct} {
		reported := fieldValue(row, f)
		if reported == nil {
			continue
		}
		computed, has := n.sums.get(f)
		if !has {
			// Nothing beneath this node reported the field. A zero claim
			// is vacuously fine; a nonzero one has no support at all.
			if reported.Sign() == 0 {
				continue
			}
			computed = decimal.Zero
		}
		if c.fieldTolerance(f).Within(computed, *reported) {
			continue
		}

		diff := computed.Sub(*reported).Abs()
		issue := model.NewIssue(codes[f], fmt.Sprintf(
			"%s at %s: computed %s %s, reported %s (diff %s)",
			row.RowType, model.PathString(n.path), fieldNames[f],
			computed.String(), reported.String(), diff.String()))
		issue.RowRefs = []int{rowIdx}
		issue.SectionPath = n.path
		issue.NumericDiff = &diff
		c.issues = append(c.issues, issue)

		if f == fieldFV {
			c.checkShifted(n, parent, rowIdx, *reported)
		}
	}
}

// checkShifted tests whether a mismatched fair-value claim actually
// matches a sibling section's computed sum: the classic symptom of a
// subtotal row extracted one section off.
func (c *arithChecker) checkShifted(n *sectionNode, parent *sectionNode, rowIdx int, reported decimal.Decimal) {
	if parent == nil {
		return
	}
	for _, sibling := range parent.children {
		if sibling == n || !sibling.sums.fv.has {
			continue
		}
		if c.tol.FairValue.Within(sibling.sums.fv.sum, reported) {
			issue := model.NewIssue(model.CodeShiftedSubtotal, fmt.Sprintf(
				"reported value %s at %s matches sibling section %s (sum %s); subtotal may be shifted",
				reported.String(), model.PathString(n.path),
				model.PathString(sibling.path), sibling.sums.fv.sum.String()))
			issue.RowRefs = []int{rowIdx}
			issue.SectionPath = n.path
			c.issues = append(c.issues, issue)
			return
		}
	}
}

// checkRoot runs the two independent document-level anchors: the grand
// total row (or a total row at the root) against the computed root sum,
// and the document-declared net assets figure against the same sum. Both
// can fire on one document; see DESIGN.md for why they stay separate.
func (c *arithChecker) checkRoot(root *sectionNode, doc *model.Document) {
	anchor := root.grand
	if anchor < 0 {
		anchor = root.total
	}
	if anchor >= 0 {
		row := c.rows[anchor]
		if row.FairValue == nil && row.Cost == nil {
			issue := model.NewIssue(model.CodeTotalMissingNumeric,
				string(row.RowType)+" at root carries no parseable value")
			issue.RowRefs = []int{anchor}
			c.issues = append(c.issues, issue)
		}
		for _, f := range []field{fieldFV, fieldCost, fieldPct} {
			reported := fieldValue(row, f)
			if reported == nil {
				continue
			}
			computed, has := root.sums.get(f)
			if !has {
				if reported.Sign() == 0 {
					continue
				}
				computed = decimal.Zero
			}
			if c.fieldTolerance(f).Within(computed, *reported) {
				continue
			}
			diff := computed.Sub(*reported).Abs()
			issue := model.NewIssue(rootCodes[f], fmt.Sprintf(
				"grand total: computed %s %s, reported %s (diff %s)",
				fieldNames[f], computed.String(), reported.String(), diff.String()))
			issue.RowRefs = []int{anchor}
			issue.NumericDiff = &diff
			c.issues = append(c.issues, issue)
		}
	}

	if doc != nil && doc.NetAssets != nil && root.sums.fv.has {
		if !c.tol.FairValue.Within(root.sums.fv.sum, *doc.NetAssets) {
			diff := root.sums.fv.sum.Sub(*doc.NetAssets).Abs()
			issue := model.NewIssue(model.CodeGrandTotalMismatchFV, fmt.Sprintf(
				"declared net assets %s disagree with computed total %s (diff %s)",
				doc.NetAssets.String(), root.sums.fv.sum.String(), diff.String()))
			issue.NumericDiff = &diff
			c.issues = append(c.issues, issue)
		}
	}
}

// checkNegativePercents flags negative percent-of-net-assets values on
// any row. Percent lives in the 0-100 domain; a negative almost always
// means an OCR'd separator dash was read as a minus sign.
func (c *arithChecker) checkNegativePercents() {
	for i, row := range c.rows {
		if row.Percent == nil || row.Percent.Sign() >= 0 {
			continue
		}
		issue := model.NewIssue(model.CodeSuspiciousNegativePercent, fmt.Sprintf(
			"row %q reports negative percent %s", row.Label, row.Percent.String()))
		issue.RowRefs = []int{i}
		issue.SectionPath = row.SectionPath
		c.issues = append(c.issues, issue)
	}
}

func (c *arithChecker) fieldTolerance(f field) numeric.FieldTolerance {
	switch f {
	case fieldFV:
		return c.tol.FairValue
	case fieldCost:
		return c.tol.Cost
	default:
		return c.tol.Percent
	}
}
