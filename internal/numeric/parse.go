// Package numeric implements exact-decimal parsing and tolerance
// comparison for extracted monetary, quantity, and percent tokens.
// Everything operates on shopspring decimals; binary floats would produce
// false mismatches at currency-scale values.
package numeric

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var (
	currencyPrefixRe = regexp.MustCompile(`^(?i:USD|CAD|EUR|GBP|JPY|S\$|[$€£¥])\s*`)
	numericTokenRe   = regexp.MustCompile(`[0-9][0-9.,]*`)
)

// ParseDecimal parses one extracted cell into an exact decimal. It
// returns (nil, nil) for empty or dash-only cells — an absent figure, not
// zero. It accepts currency symbols and ISO prefixes ($ € £ ¥ USD CAD EUR
// GBP JPY S$), thousands commas, parenthesized negatives, trailing
// percent signs, and European thousands-dot notation (1.234.567,89). A
// cell carrying more than one numeric token is an error: the extractor
// merged adjacent columns and no single value can be trusted.
func ParseDecimal(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" || isDashOnly(s) {
		return nil, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for {
		trimmed := currencyPrefixRe.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	// An OCR'd minus may come through as hyphen, en dash, or em dash.
	for _, dash := range []string{"-", "–", "—"} {
		if strings.HasPrefix(s, dash) {
			negative = true
			s = strings.TrimSpace(strings.TrimPrefix(s, dash))
			break
		}
	}

	tokens := numericTokenRe.FindAllString(s, -1)
	switch len(tokens) {
	case 0:
		return nil, eris.Errorf("numeric: no numeric token in %q", raw)
	case 1:
	default:
		return nil, eris.Errorf("numeric: multiple numeric tokens in %q", raw)
	}

	token := normalizeSeparators(tokens[0])

	d, err := decimal.NewFromString(token)
	if err != nil {
		return nil, eris.Wrapf(err, "numeric: parse %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return &d, nil
}

// normalizeSeparators rewrites a numeric token into plain decimal-point
// form. Only multiple dots signal European thousands notation; a single
// dot is always a decimal point (1.234 is one-point-two-three-four).
func normalizeSeparators(token string) string {
	if strings.Count(token, ".") > 1 {
		// 1.234.567 or 1.234.567,89 — dots are thousands separators.
		token = strings.ReplaceAll(token, ".", "")
		return strings.ReplaceAll(token, ",", ".")
	}
	if strings.Contains(token, ",") && strings.Contains(token, ".") {
		if strings.LastIndex(token, ",") > strings.LastIndex(token, ".") {
			// 1.234,56 — dot thousands, comma decimal.
			token = strings.ReplaceAll(token, ".", "")
			return strings.ReplaceAll(token, ",", ".")
		}
		return strings.ReplaceAll(token, ",", "")
	}
	if i := strings.IndexByte(token, ','); i >= 0 {
		if strings.Count(token, ",") == 1 && len(token)-i-1 != 3 {
			// Single comma not followed by a 3-digit group: decimal comma.
			return strings.ReplaceAll(token, ",", ".")
		}
		return strings.ReplaceAll(token, ",", "")
	}
	return token
}

// isDashOnly reports whether s consists solely of dash characters and
// spaces — the conventional "no value" cell in printed schedules.
func isDashOnly(s string) bool {
	seen := false
	for _, r := range s {
		switch r {
		case '-', '–', '—', ' ':
			if r != ' ' {
				seen = true
			}
		default:
			return false
		}
	}
	return seen
}

// DigitOverlap returns the Dice coefficient of the digit multisets of a
// and b (0..1). Two strings with no digits at all overlap fully: there is
// nothing to disagree about.
func DigitOverlap(a, b string) float64 {
	da := digitCounts(a)
	db := digitCounts(b)

	var totalA, totalB, common int
	for d := 0; d < 10; d++ {
		totalA += da[d]
		totalB += db[d]
		if da[d] < db[d] {
			common += da[d]
		} else {
			common += db[d]
		}
	}
	if totalA+totalB == 0 {
		return 1.0
	}
	return float64(2*common) / float64(totalA+totalB)
}

func digitCounts(s string) [10]int {
	var counts [10]int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			counts[r-'0']++
		}
	}
	return counts
}
