package numeric

import "github.com/shopspring/decimal"

// FieldTolerance bounds comparisons for one numeric field. A comparison
// passes when the absolute difference is within Abs, or within Rel times
// the larger magnitude of the two values. Either bound suffices.
type FieldTolerance struct {
	Abs decimal.Decimal `json:"abs"`
	Rel decimal.Decimal `json:"rel"`
}

// Within reports whether computed and reported agree under the tolerance.
// Symmetric by construction: the relative bound is anchored on the larger
// magnitude, not on either argument specifically.
func (ft FieldTolerance) Within(computed, reported decimal.Decimal) bool {
	diff := computed.Sub(reported).Abs()
	if diff.Cmp(ft.Abs) <= 0 {
		return true
	}
	if ft.Rel.Sign() <= 0 {
		return false
	}
	larger := decimal.Max(computed.Abs(), reported.Abs())
	return diff.Cmp(ft.Rel.Mul(larger)) <= 0
}

// ToleranceConfig carries the per-field tolerances used everywhere a
// computed sum is compared against a reported value. Immutable by
// convention: build once per run, pass by value.
type ToleranceConfig struct {
	FairValue FieldTolerance `json:"fair_value"`
	Cost      FieldTolerance `json:"cost"`
	Percent   FieldTolerance `json:"percent"`
}

// DefaultTolerances returns the production defaults: one currency unit
// absolute (or 0.1% relative) for fair value and cost, and a hundredth of
// a percentage point for percent-of-net-assets figures (0-100 domain).
func DefaultTolerances() ToleranceConfig {
	rel := decimal.NewFromFloat(0.001)
	return ToleranceConfig{
		FairValue: FieldTolerance{Abs: decimal.NewFromInt(1), Rel: rel},
		Cost:      FieldTolerance{Abs: decimal.NewFromInt(1), Rel: rel},
		Percent:   FieldTolerance{Abs: decimal.NewFromFloat(0.01), Rel: rel},
	}
}
