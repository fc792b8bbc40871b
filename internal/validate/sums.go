package validate

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
)

// field enumerates the reconciled numeric columns.
type field int

const (
	fieldFV field = iota
	fieldCost
	fieldPct
)

var fieldNames = map[field]string{
	fieldFV:   "fair value",
	fieldCost: "cost",
	fieldPct:  "percent",
}

func fieldValue(row model.Row, f field) *decimal.Decimal {
	switch f {
	case fieldFV:
		return row.FairValue
	case fieldCost:
		return row.Cost
	default:
		return row.Percent
	}
}

// fieldSum accumulates one column. The has flag is load-bearing: a
// section whose holdings all omit a column must not "match" a nonzero
// reported value just because its sum defaulted to zero.
type fieldSum struct {
	sum decimal.Decimal
	has bool
}

func (fs *fieldSum) add(v *decimal.Decimal) {
	if v == nil {
		return
	}
	fs.sum = fs.sum.Add(*v)
	fs.has = true
}

func (fs *fieldSum) merge(v decimal.Decimal, ok bool) {
	if !ok {
		return
	}
	fs.sum = fs.sum.Add(v)
	fs.has = true
}

type nodeSums struct {
	fv, cost, pct fieldSum
}

func (ns *nodeSums) get(f field) (decimal.Decimal, bool) {
	switch f {
	case fieldFV:
		return ns.fv.sum, ns.fv.has
	case fieldCost:
		return ns.cost.sum, ns.cost.has
	default:
		return ns.pct.sum, ns.pct.has
	}
}

// computeSums fills every node's per-field sums in a single post-order
// pass: direct holdings first, then each child's contribution.
func (n *sectionNode) computeSums(rows []model.Row) {
	for _, child := range n.children {
		child.computeSums(rows)
	}
	for _, h := range n.holdings {
		row := rows[h]
		n.sums.fv.add(row.FairValue)
		n.sums.cost.add(row.Cost)
		n.sums.pct.add(row.Percent)
	}
	for _, child := range n.children {
		n.sums.fv.merge(child.contribution(rows, fieldFV))
		n.sums.cost.merge(child.contribution(rows, fieldCost))
		n.sums.pct.merge(child.contribution(rows, fieldPct))
	}
}

// contribution is what a parent adds for this child section: the child's
// own reported subtotal (or total) when it carries the field, else the
// child's computed sum. Preferring the reported figure keeps extraction
// noise at one level from cascading into every ancestor's comparison.
func (n *sectionNode) contribution(rows []model.Row, f field) (decimal.Decimal, bool) {
	for _, slot := range []int{n.subtotal, n.total} {
		if slot < 0 {
			continue
		}
		if v := fieldValue(rows[slot], f); v != nil {
			return *v, true
		}
	}
	return n.sums.get(f)
}
