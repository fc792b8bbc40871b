package validate

import (
	"fmt"
	"strings"

	"github.com/ledgerline/soi-cli/internal/model"
)

// checkDuplicates finds near-duplicate holdings: same normalized label
// and same fair value within one section. Emits one issue per duplicate
// group, carrying every member's row index, in first-seen order.
func checkDuplicates(rows []model.Row) []model.Issue {
	groups := make(map[string][]int)
	var order []string

	for i, row := range rows {
		if row.RowType != model.RowTypeHolding || row.FairValue == nil {
			continue
		}
		label := normalizeHoldingLabel(row.Label)
		if label == "" {
			continue
		}
		key := strings.Join(row.SectionPath, "\x1f") + "\x1f" + label + "\x1f" + row.FairValue.String()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	var issues []model.Issue
	for _, key := range order {
		refs := groups[key]
		if len(refs) < 2 {
			continue
		}
		first := rows[refs[0]]
		issue := model.NewIssue(model.CodePossibleDuplicateHoldings, fmt.Sprintf(
			"%d holdings named %q with fair value %s in %s",
			len(refs), first.Label, first.FairValue.String(), model.PathString(first.SectionPath)))
		issue.RowRefs = refs
		issue.SectionPath = first.SectionPath
		issues = append(issues, issue)
	}
	return issues
}

// normalizeHoldingLabel lowercases, strips punctuation, and collapses
// whitespace so trivially re-set spellings of one name compare equal.
func normalizeHoldingLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
