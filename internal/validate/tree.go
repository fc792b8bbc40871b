package validate

import (
	"strings"

	"github.com/ledgerline/soi-cli/internal/model"
)

// sectionNode is one node of the aggregation tree, keyed by a section
// path prefix. The tree is an arena of owned nodes: children are created
// on first sight and kept in first-seen order so traversal is
// deterministic. Row fields hold indices into the sanitized row list;
// -1 means absent.
type sectionNode struct {
	path     []string
	holdings []int
	subtotal int
	total    int
	// grand is the document-wide GRAND_TOTAL row; populated on the root
	// only.
	grand    int
	children []*sectionNode
	byName   map[string]*sectionNode

	sums nodeSums
}

func newNode(path []string) *sectionNode {
	return &sectionNode{
		path:     path,
		subtotal: -1,
		total:    -1,
		grand:    -1,
		byName:   make(map[string]*sectionNode),
	}
}

// ensure walks the tree creating nodes so that every prefix of path has a
// node one segment deeper than its parent.
func (n *sectionNode) ensure(path []string) *sectionNode {
	cur := n
	for i, seg := range path {
		child, ok := cur.byName[seg]
		if !ok {
			child = newNode(path[:i+1])
			cur.byName[seg] = child
			cur.children = append(cur.children, child)
		}
		cur = child
	}
	return cur
}

// buildTree groups rows into the section hierarchy and surfaces the
// structural anomalies found along the way. Rows with an unknown type
// never enter the tree (the provenance checker flags them); subtotal and
// total rows attach at most once per path, with later claims set aside as
// orphans rather than silently overwriting the first.
func buildTree(rows []model.Row) (*sectionNode, []model.Issue) {
	root := newNode(nil)
	var issues []model.Issue

	var lastHoldingPath []string
	sawHolding := false

	for i, row := range rows {
		switch row.RowType {
		case model.RowTypeHolding:
			node := root.ensure(row.SectionPath)
			node.holdings = append(node.holdings, i)
			lastHoldingPath = row.SectionPath
			sawHolding = true

		case model.RowTypeSubtotal, model.RowTypeTotal:
			issues = append(issues, checkPathConsistency(i, row, lastHoldingPath, sawHolding)...)

			node := root.ensure(row.SectionPath)
			slot := &node.subtotal
			if row.RowType == model.RowTypeTotal {
				slot = &node.total
			}
			if *slot >= 0 {
				issue := model.NewIssue(model.CodeOrphanedTotal,
					"duplicate "+strings.ToLower(string(row.RowType))+" claim at "+model.PathString(row.SectionPath))
				issue.RowRefs = []int{i}
				issue.SectionPath = row.SectionPath
				issues = append(issues, issue)
				continue
			}
			*slot = i

		case model.RowTypeGrandTotal:
			if root.grand >= 0 {
				issue := model.NewIssue(model.CodeOrphanedTotal,
					"duplicate grand total claim")
				issue.RowRefs = []int{i}
				issues = append(issues, issue)
				continue
			}
			root.grand = i
		}
	}

	issues = append(issues, root.pruneOrphans(rows, true)...)
	return root, issues
}

// pruneOrphans detaches subtotal/total rows claiming a subtree that holds
// no holdings at all: a claim with nothing to sum is an extraction
// artifact, not a section. Returns one ORPHANED_TOTAL per detached row.
// The root is exempt (grand totals legitimately sit above everything).
func (n *sectionNode) pruneOrphans(rows []model.Row, isRoot bool) []model.Issue {
	var issues []model.Issue
	for _, child := range n.children {
		issues = append(issues, child.pruneOrphans(rows, false)...)
	}
	if isRoot || n.subtreeHasHoldings() {
		return issues
	}
	for _, slot := range []*int{&n.subtotal, &n.total} {
		if *slot < 0 {
			continue
		}
		row := rows[*slot]
		issue := model.NewIssue(model.CodeOrphanedTotal,
			strings.ToLower(string(row.RowType))+" at "+model.PathString(n.path)+" has no holdings to aggregate")
		issue.RowRefs = []int{*slot}
		issue.SectionPath = n.path
		issues = append(issues, issue)
		*slot = -1
	}
	return issues
}

func (n *sectionNode) subtreeHasHoldings() bool {
	if len(n.holdings) > 0 {
		return true
	}
	for _, child := range n.children {
		if child.subtreeHasHoldings() {
			return true
		}
	}
	return false
}

// checkPathConsistency flags aggregate rows whose claimed path does not
// fit where they appear: unrelated to the nearest preceding holding's
// path, or labeled with vocabulary that shares nothing with the claimed
// leaf segment. Both are symptoms of a subtotal assigned to the wrong
// section by the extractor.
func checkPathConsistency(idx int, row model.Row, lastHoldingPath []string, sawHolding bool) []model.Issue {
	code := model.CodeSubtotalPathMismatch
	if row.RowType == model.RowTypeTotal {
		code = model.CodeTotalPathMismatch
	}

	if sawHolding && len(row.SectionPath) > 0 && !pathsRelated(row.SectionPath, lastHoldingPath) {
		issue := model.NewIssue(code,
			string(row.RowType)+" at "+model.PathString(row.SectionPath)+
				" appears after holdings of unrelated section "+model.PathString(lastHoldingPath))
		issue.RowRefs = []int{idx}
		issue.SectionPath = row.SectionPath
		return []model.Issue{issue}
	}

	if len(row.SectionPath) > 0 && row.Label != "" {
		leaf := row.SectionPath[len(row.SectionPath)-1]
		if !labelMatchesSection(row.Label, leaf) {
			issue := model.NewIssue(code,
				string(row.RowType)+" label "+strconvQuote(row.Label)+" does not mention its section "+strconvQuote(leaf))
			issue.RowRefs = []int{idx}
			issue.SectionPath = row.SectionPath
			return []model.Issue{issue}
		}
	}
	return nil
}

// pathsRelated reports whether one path is a prefix of the other
// (ancestor, self, or descendant).
func pathsRelated(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sectionStopWords are label tokens that carry no section identity:
// they appear in nearly every aggregate caption.
var sectionStopWords = map[string]bool{
	"total": true, "subtotal": true, "net": true, "assets": true,
	"investments": true, "investment": true, "securities": true,
	"value": true, "cost": true, "fair": true,
	"the": true, "of": true, "and": true, "in": true,
}

// labelMatchesSection reports whether an aggregate row's label shares at
// least one meaningful keyword with its claimed leaf path segment. When
// either side has no meaningful tokens there is nothing to disagree
// about and the check passes.
func labelMatchesSection(label, segment string) bool {
	labelTokens := meaningfulTokens(label)
	segTokens := meaningfulTokens(segment)
	if len(labelTokens) == 0 || len(segTokens) == 0 {
		return true
	}
	for tok := range segTokens {
		if labelTokens[tok] {
			return true
		}
	}
	return false
}

func meaningfulTokens(s string) map[string]bool {
	tokens := make(map[string]bool)
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	for _, tok := range strings.Fields(b.String()) {
		if !sectionStopWords[tok] && len(tok) > 1 {
			tokens[tok] = true
		}
	}
	return tokens
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}
