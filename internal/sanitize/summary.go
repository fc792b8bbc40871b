package sanitize

import (
	"strings"

	"github.com/ledgerline/soi-cli/internal/model"
)

// dropSummaryBlocks removes "Top N Holdings" style preview tables whose
// rows duplicate the full schedule. A candidate block is a maximal
// contiguous run of rows sharing the terminating TOTAL row's section path
// as a prefix. The block is dropped only when BOTH hold:
//
//  1. the terminating total's percent is below the configured threshold
//     (a legitimate minority-weight section must not be penalized by
//     percent alone), and
//  2. the total's label or one of the block's shared path segments
//     matches the summary keyword vocabulary.
//
// Every drop is logged with all affected rows so it stays reversible.
func dropSummaryBlocks(work []indexedRow, log []model.FixLogEntry, opts Options) ([]indexedRow, []model.FixLogEntry) {
	drop := make([]bool, len(work))

	for i, ir := range work {
		total := ir.row
		if total.RowType != model.RowTypeTotal {
			continue
		}
		if total.Percent == nil || total.Percent.Cmp(opts.SummaryPercentThreshold) >= 0 {
			continue
		}

		// Extend the block upward over rows under the total's path.
		start := i
		for start > 0 && !drop[start-1] && pathHasPrefix(work[start-1].row.SectionPath, total.SectionPath) {
			start--
		}
		if start == i {
			// A bare total with no block above it is the tree builder's
			// problem (orphan detection), not a summary table.
			continue
		}

		if !summaryKeywordMatch(total, opts.Keywords.SummaryTable) {
			continue
		}

		indices := make([]int, 0, i-start+1)
		dropped := make([]model.Row, 0, i-start+1)
		for j := start; j <= i; j++ {
			drop[j] = true
			indices = append(indices, work[j].idx)
			dropped = append(dropped, work[j].row)
		}
		log = append(log, model.FixLogEntry{
			RowIdx:     -1,
			Rows:       indices,
			Action:     model.FixActionDropped,
			Reason:     model.FixSummaryTableBlock,
			Confidence: model.FixConfidenceMedium,
			OldValue:   total.Label,
			Dropped:    dropped,
		})
	}

	out := work[:0:0]
	for j, ir := range work {
		if !drop[j] {
			out = append(out, ir)
		}
	}
	return out, log
}

// summaryKeywordMatch tests the keyword vocabulary against the
// terminating total's label and its section path segments. Keywords match
// on word boundaries: "top" must not fire inside "stop".
func summaryKeywordMatch(total model.Row, keywords []string) bool {
	haystacks := make([]string, 0, len(total.SectionPath)+1)
	haystacks = append(haystacks, wordForm(total.Label))
	for _, seg := range total.SectionPath {
		haystacks = append(haystacks, wordForm(seg))
	}

	for _, kw := range keywords {
		needle := wordForm(kw)
		if strings.TrimSpace(needle) == "" {
			continue
		}
		for _, h := range haystacks {
			if strings.Contains(h, needle) {
				return true
			}
		}
	}
	return false
}

// wordForm lowercases s, replaces punctuation with spaces, and pads both
// ends so substring search becomes whole-word (and whole-phrase) search.
func wordForm(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return " " + strings.Join(strings.Fields(b.String()), " ") + " "
}
