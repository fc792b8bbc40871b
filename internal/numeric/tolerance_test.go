package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFieldTolerance_AbsoluteBound(t *testing.T) {
	t.Parallel()

	tol := FieldTolerance{Abs: decimal.NewFromInt(1)}

	assert.True(t, tol.Within(mustDecimal(t, "100"), mustDecimal(t, "100")))
	assert.True(t, tol.Within(mustDecimal(t, "100"), mustDecimal(t, "100.99")))
	assert.True(t, tol.Within(mustDecimal(t, "100"), mustDecimal(t, "101")))
	assert.False(t, tol.Within(mustDecimal(t, "100"), mustDecimal(t, "101.01")))
}

func TestFieldTolerance_RelativeBound(t *testing.T) {
	t.Parallel()

	tol := FieldTolerance{Abs: decimal.NewFromInt(1), Rel: decimal.NewFromFloat(0.001)}

	// 0.1% of 10,000,000 is 10,000 — well past the $1 absolute bound.
	assert.True(t, tol.Within(mustDecimal(t, "10000000"), mustDecimal(t, "10005000")))
	assert.False(t, tol.Within(mustDecimal(t, "10000000"), mustDecimal(t, "10020000")))
}

func TestFieldTolerance_Symmetry(t *testing.T) {
	t.Parallel()

	tol := DefaultTolerances().FairValue
	pairs := [][2]string{
		{"100", "100.5"},
		{"100", "250"},
		{"-50", "50"},
		{"10000000", "10005000"},
		{"0", "0.9"},
	}
	for _, p := range pairs {
		a, b := mustDecimal(t, p[0]), mustDecimal(t, p[1])
		assert.Equal(t, tol.Within(a, b), tol.Within(b, a), "pair %v", p)
	}
}

func TestFieldTolerance_ExactDecimal(t *testing.T) {
	t.Parallel()

	// 0.1 + 0.2 == 0.3 exactly in decimal arithmetic; with binary floats
	// this comparison would need slack.
	tol := FieldTolerance{Abs: decimal.Zero}
	sum := mustDecimal(t, "0.1").Add(mustDecimal(t, "0.2"))
	assert.True(t, tol.Within(sum, mustDecimal(t, "0.3")))
}

func TestFieldTolerance_Monotonic(t *testing.T) {
	t.Parallel()

	// Widening the tolerance never turns a pass into a fail.
	narrow := FieldTolerance{Abs: decimal.NewFromInt(1), Rel: decimal.NewFromFloat(0.001)}
	wide := FieldTolerance{Abs: decimal.NewFromInt(100), Rel: decimal.NewFromFloat(0.01)}

	pairs := [][2]string{
		{"100", "100"},
		{"100", "100.5"},
		{"100", "150"},
		{"100", "5000"},
		{"10000000", "10005000"},
	}
	for _, p := range pairs {
		a, b := mustDecimal(t, p[0]), mustDecimal(t, p[1])
		if narrow.Within(a, b) {
			assert.True(t, wide.Within(a, b), "pair %v passed narrow but failed wide", p)
		}
	}
}

func TestDefaultTolerances(t *testing.T) {
	t.Parallel()

	cfg := DefaultTolerances()
	assert.True(t, cfg.FairValue.Abs.Equal(decimal.NewFromInt(1)))
	assert.True(t, cfg.Cost.Abs.Equal(decimal.NewFromInt(1)))
	assert.True(t, cfg.Percent.Abs.Equal(decimal.NewFromFloat(0.01)))
}
