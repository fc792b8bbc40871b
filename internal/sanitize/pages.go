package sanitize

import (
	"fmt"
	"sort"

	"github.com/ledgerline/soi-cli/internal/model"
)

// repairPageGaps applies the SOI page-coverage policy. Coverage is the
// fraction of pages present within the min..max span. Below the
// threshold the detector is assumed to have under-counted a contiguous
// schedule and the whole span is filled; otherwise only narrow gaps (at
// most gapBound pages) are filled, and wide gaps are respected as real
// section breaks.
func repairPageGaps(pages []int, log []model.FixLogEntry, coverageThreshold float64, gapBound int) ([]int, []model.FixLogEntry) {
	present := dedupeSorted(pages)
	if len(present) < 2 {
		return present, log
	}

	lo, hi := present[0], present[len(present)-1]
	span := hi - lo + 1
	coverage := float64(len(present)) / float64(span)

	if coverage < coverageThreshold {
		filled := make([]int, 0, span)
		for p := lo; p <= hi; p++ {
			filled = append(filled, p)
		}
		if len(filled) > len(present) {
			log = append(log, model.FixLogEntry{
				RowIdx:     -1,
				Action:     model.FixActionPagesExpanded,
				Reason:     model.FixPageGapFilled,
				Confidence: model.FixConfidenceMedium,
				OldValue:   fmt.Sprint(present),
				NewValue:   fmt.Sprintf("[%d..%d]", lo, hi),
			})
		}
		return filled, log
	}

	out := []int{present[0]}
	for i := 1; i < len(present); i++ {
		gap := present[i] - present[i-1] - 1
		if gap > 0 && gap <= gapBound {
			for p := present[i-1] + 1; p < present[i]; p++ {
				out = append(out, p)
			}
			log = append(log, model.FixLogEntry{
				RowIdx:     -1,
				Action:     model.FixActionPagesExpanded,
				Reason:     model.FixPageGapFilled,
				Confidence: model.FixConfidenceHigh,
				OldValue:   fmt.Sprintf("gap after page %d", present[i-1]),
				NewValue:   fmt.Sprintf("[%d..%d]", present[i-1]+1, present[i]-1),
			})
		}
		out = append(out, present[i])
	}
	return out, log
}

func dedupeSorted(pages []int) []int {
	out := make([]int, 0, len(pages))
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p > 0 && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
