package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
)

// headingDecorRe matches "Telecommunications -- 7.1%" style decorations a
// section heading carries when OCR folds the caption and its percent into
// one cell.
var headingDecorRe = regexp.MustCompile(`^(.*?)\s*(?:--|\x{2013}|\x{2014}|-)\s*\(?\d+(?:\.\d+)?\s*%\)?\s*$`)

// fixPhantomRows applies the per-row repair heuristics: column-header
// captions extracted as holdings, section headings extracted as holdings,
// unlabeled subtotal rows misclassified as holdings, and trailing label
// separators. Returns the surviving rows and the extended fix log.
func fixPhantomRows(work []indexedRow, log []model.FixLogEntry, headerVocab []string) ([]indexedRow, []model.FixLogEntry) {
	vocab := make(map[string]bool, len(headerVocab))
	for _, h := range headerVocab {
		vocab[normalizeLabel(h)] = true
	}

	out := work[:0:0]
	for i, ir := range work {
		row := ir.row

		if row.RowType == model.RowTypeHolding && !row.HasNumeric() {
			if isColumnHeader(row.Label, vocab) {
				log = append(log, model.FixLogEntry{
					RowIdx:     ir.idx,
					Action:     model.FixActionDropped,
					Reason:     model.FixColumnHeaderAsHolding,
					Confidence: model.FixConfidenceHigh,
					OldValue:   row.Label,
					Dropped:    []model.Row{row},
				})
				continue
			}
			if isSectionHeading(row, work[i+1:]) {
				log = append(log, model.FixLogEntry{
					RowIdx:     ir.idx,
					Action:     model.FixActionDropped,
					Reason:     model.FixHeadingRowAsHolding,
					Confidence: model.FixConfidenceMedium,
					OldValue:   row.Label,
					Dropped:    []model.Row{row},
				})
				continue
			}
		}

		if converted, ok := convertUnlabeledSubtotal(row, out); ok {
			log = append(log, model.FixLogEntry{
				RowIdx:     ir.idx,
				Action:     model.FixActionConverted,
				Reason:     model.FixUnlabeledSubtotal,
				Confidence: model.FixConfidenceMedium,
				OldValue:   string(row.RowType),
				NewValue:   string(converted.RowType),
			})
			row = converted
		}

		if cleaned, old := stripTrailingSeparator(row.Label); old != "" {
			log = append(log, model.FixLogEntry{
				RowIdx:     ir.idx,
				Action:     model.FixActionConverted,
				Reason:     model.FixLabelSeparatorStripped,
				Confidence: model.FixConfidenceHigh,
				OldValue:   old,
				NewValue:   cleaned,
			})
			row.Label = cleaned
		}

		out = append(out, indexedRow{idx: ir.idx, row: row})
	}
	return out, log
}

// isColumnHeader reports whether label is a table caption rather than an
// investment name. Matches the header vocabulary after normalization, or
// a slash/whitespace-joined combination of vocabulary phrases ("Shares /
// Principal Amount").
func isColumnHeader(label string, vocab map[string]bool) bool {
	norm := normalizeLabel(label)
	if norm == "" {
		return false
	}
	if vocab[norm] {
		return true
	}
	parts := strings.Split(norm, "/")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !vocab[strings.TrimSpace(p)] {
			return false
		}
	}
	return true
}

// isSectionHeading reports whether a numeric-less holding is actually the
// caption of a section that the following rows sit under: its (decor-
// stripped) label reappears as the next deeper path segment within the
// following few rows.
func isSectionHeading(row model.Row, following []indexedRow) bool {
	name := row.Label
	if m := headingDecorRe.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	name = normalizeLabel(name)
	if name == "" {
		return false
	}

	depth := len(row.SectionPath)
	const lookahead = 10
	for i, ir := range following {
		if i >= lookahead {
			break
		}
		next := ir.row
		if len(next.SectionPath) <= depth {
			// The section this heading would introduce has ended.
			if !pathHasPrefix(next.SectionPath, row.SectionPath) {
				break
			}
			continue
		}
		if normalizeLabel(next.SectionPath[depth]) == name {
			return true
		}
	}
	return false
}

// convertUnlabeledSubtotal detects a blank-label "holding" whose fair
// value equals the sum of the contiguous preceding holdings in its exact
// section — a subtotal row the extractor failed to classify.
func convertUnlabeledSubtotal(row model.Row, preceding []indexedRow) (model.Row, bool) {
	if row.RowType != model.RowTypeHolding || strings.TrimSpace(row.Label) != "" {
		return row, false
	}
	if row.FairValue == nil || row.Quantity != nil {
		return row, false
	}

	sum := decimal.Zero
	count := 0
	for i := len(preceding) - 1; i >= 0; i-- {
		prev := preceding[i].row
		if prev.RowType != model.RowTypeHolding || !samePath(prev.SectionPath, row.SectionPath) {
			break
		}
		if prev.FairValue == nil {
			return row, false
		}
		sum = sum.Add(*prev.FairValue)
		count++
	}
	if count < 2 {
		return row, false
	}
	if sum.Sub(*row.FairValue).Abs().Cmp(decimal.NewFromInt(1)) > 0 {
		return row, false
	}

	row.RowType = model.RowTypeSubtotal
	row.Label = fmt.Sprintf("Subtotal %s", model.PathString(row.SectionPath))
	return row, true
}

// stripTrailingSeparator removes a dangling list separator from a label.
// Returns the cleaned label and, when a change was made, the original.
func stripTrailingSeparator(label string) (cleaned, old string) {
	trimmed := strings.TrimSpace(label)
	stripped := strings.TrimRight(trimmed, ":-–— ")
	if stripped == trimmed || stripped == "" {
		return label, ""
	}
	return stripped, label
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ":")
	return strings.Join(strings.Fields(s), " ")
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathHasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
