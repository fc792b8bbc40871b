package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal_AbsentValues(t *testing.T) {
	t.Parallel()

	// Dash cells are "no value", never zero and never negative.
	for _, raw := range []string{"", "   ", "-", "--", "—", "- -", "–"} {
		d, err := ParseDecimal(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Nil(t, d, "raw=%q", raw)
	}
}

func TestParseDecimal_Formats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"1234", "1234"},
		{"1,234.56", "1234.56"},
		{"$1,234,567", "1234567"},
		{"$ 1,000.25", "1000.25"},
		{"(1,500)", "-1500"},
		{"($250.75)", "-250.75"},
		{"-42", "-42"},
		{"– 1.8", "-1.8"}, // en-dash minus from OCR
		{"USD 2,000", "2000"},
		{"usd 2,000", "2000"},
		{"S$ 500", "500"},
		{"€1.234.567", "1234567"},
		{"1.234.567,89", "1234567.89"},
		{"£12,345", "12345"},
		{"¥1,000", "1000"},
		{"3.5%", "3.5"},
		{"1.234", "1.234"}, // single dot is a decimal point, not European thousands
		{"1,5", "1.5"},     // decimal comma
		{"0", "0"},
		{"0.00", "0"},
	}

	for _, tc := range cases {
		d, err := ParseDecimal(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		require.NotNil(t, d, "raw=%q", tc.raw)
		assert.True(t, d.Equal(mustDecimal(t, tc.want)),
			"raw=%q: got %s want %s", tc.raw, d, tc.want)
	}
}

func TestParseDecimal_Errors(t *testing.T) {
	t.Parallel()

	t.Run("multiple numeric tokens", func(t *testing.T) {
		t.Parallel()
		// Two tokens mean the extractor merged adjacent columns.
		d, err := ParseDecimal("100 200")
		assert.Error(t, err)
		assert.Nil(t, d)
	})

	t.Run("no numeric token", func(t *testing.T) {
		t.Parallel()
		d, err := ParseDecimal("n/a")
		assert.Error(t, err)
		assert.Nil(t, d)
	})
}

func TestDigitOverlap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, DigitOverlap("1,234.56", "1234.56"))
	assert.Equal(t, 1.0, DigitOverlap("no digits", "also none"))
	assert.Equal(t, 0.0, DigitOverlap("111", "999"))

	// Partial overlap: "1234" vs "1299" share the 1 and the 2.
	assert.InDelta(t, 0.5, DigitOverlap("1234", "1299"), 1e-9)
}
