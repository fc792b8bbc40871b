package sanitize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/soi-cli/internal/model"
)

// labelPercentRe captures "Corporate Bonds — 1.8%" style labels where the
// section percent rode along in the caption cell.
var labelPercentRe = regexp.MustCompile(`^(.*?)\s*(?:--|\x{2013}|\x{2014}|-)\s*\(?(\d+(?:\.\d+)?)\s*%\)?\s*$`)

// fixPercents repairs percent damage on aggregate rows: percents embedded
// in labels are lifted into the percent field, and trailing-8 OCR
// artifacts (a misread "%" glyph appended as the digit 8) are stripped.
func fixPercents(work []indexedRow, log []model.FixLogEntry) ([]indexedRow, []model.FixLogEntry) {
	maxPrec := aggregatePercentPrecision(work)

	for i, ir := range work {
		row := ir.row

		if row.RowType.Aggregates() && row.Percent == nil {
			if m := labelPercentRe.FindStringSubmatch(row.Label); m != nil && strings.TrimSpace(m[1]) != "" {
				if pct, err := decimal.NewFromString(m[2]); err == nil {
					old := row.Label
					row.Percent = &pct
					if row.PercentRaw == "" {
						row.PercentRaw = m[2] + "%"
					}
					row.Label = strings.TrimSpace(m[1])
					log = append(log, model.FixLogEntry{
						RowIdx:     ir.idx,
						Action:     model.FixActionPercentCorrected,
						Reason:     model.FixPercentFromLabel,
						Confidence: model.FixConfidenceHigh,
						OldValue:   old,
						NewValue:   row.Percent.String(),
					})
				}
			}
		}

		if fixed, ok := stripTrailingEight(row, maxPrec); ok {
			log = append(log, model.FixLogEntry{
				RowIdx:     ir.idx,
				Action:     model.FixActionPercentCorrected,
				Reason:     model.FixMisreadPercentAs8,
				Confidence: model.FixConfidenceLow,
				OldValue:   row.Percent.String(),
				NewValue:   fixed.String(),
			})
			row.Percent = &fixed
		}

		work[i] = indexedRow{idx: ir.idx, row: row}
	}
	return work, log
}

// stripTrailingEight detects percents like 1.238 where the raw capture
// carries no "%" sign: the OCR read the percent glyph as a trailing 8.
// The correction drops the artifact digit, but only when the result's
// precision falls back in line with what the document's aggregate rows
// use — a genuine three-decimal percent column would keep its 8s.
func stripTrailingEight(row model.Row, maxPrec int) (decimal.Decimal, bool) {
	if row.Percent == nil || row.PercentRaw == "" || strings.Contains(row.PercentRaw, "%") {
		return decimal.Decimal{}, false
	}

	s := row.Percent.String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 || !strings.HasSuffix(s, "8") {
		return decimal.Decimal{}, false
	}
	decimals := len(s) - dot - 1
	if decimals < 3 || decimals <= maxPrec {
		return decimal.Decimal{}, false
	}

	fixed, err := decimal.NewFromString(strings.TrimSuffix(s, "8"))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return fixed, true
}

// aggregatePercentPrecision returns the widest decimal precision found on
// rows whose percent raw carries an explicit "%" sign — the trustworthy
// sample of how many decimals this document actually prints.
func aggregatePercentPrecision(work []indexedRow) int {
	prec := 1
	for _, ir := range work {
		row := ir.row
		if row.Percent == nil || !strings.Contains(row.PercentRaw, "%") {
			continue
		}
		s := row.Percent.String()
		if dot := strings.IndexByte(s, '.'); dot >= 0 {
			if p := len(s) - dot - 1; p > prec {
				prec = p
			}
		}
	}
	return prec
}
