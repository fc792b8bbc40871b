package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/soi-cli/internal/model"
)

func cited(row model.Row, page int, x0, y0, x1, y1 float64) model.Row {
	row.Citation = &model.Citation{Page: page, BBox: model.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
	return row
}

func TestCheckCitations_PageOutOfRange(t *testing.T) {
	t.Parallel()

	doc := &model.Document{NumPages: 10}
	rows := []model.Row{
		cited(holding([]string{"A"}, "Bond One", "100", t), 11, 10, 10, 100, 100),
	}
	issues := checkCitations(rows, doc, nil)

	out := findIssues(issues, model.CodeBBoxPageOutOfRange)
	require.Len(t, out, 1)
	assert.Equal(t, model.SeverityError, out[0].Severity)
	// No bbox check against a page that does not exist.
	assert.Empty(t, findIssues(issues, model.CodeBBoxOutOfRange))
}

func TestCheckCitations_BBox(t *testing.T) {
	t.Parallel()

	doc := &model.Document{NumPages: 10}

	t.Run("inside default page bounds", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{cited(holding([]string{"A"}, "Bond One", "100", t), 2, 50, 60, 500, 700)}
		assert.Empty(t, findIssues(checkCitations(rows, doc, nil), model.CodeBBoxOutOfRange))
	})

	t.Run("overflowing the page", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{cited(holding([]string{"A"}, "Bond One", "100", t), 2, 50, 60, 700, 700)}
		out := findIssues(checkCitations(rows, doc, nil), model.CodeBBoxOutOfRange)
		require.Len(t, out, 1)
		assert.Equal(t, model.SeverityWarning, out[0].Severity)
	})

	t.Run("inverted box", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{cited(holding([]string{"A"}, "Bond One", "100", t), 2, 500, 60, 50, 700)}
		assert.Len(t, findIssues(checkCitations(rows, doc, nil), model.CodeBBoxOutOfRange), 1)
	})

	t.Run("per-page dimensions override the default", func(t *testing.T) {
		t.Parallel()
		wide := &model.Document{
			NumPages: 10,
			PageDims: map[int]model.PageSize{2: {Width: 1224, Height: 792}},
		}
		rows := []model.Row{cited(holding([]string{"A"}, "Bond One", "100", t), 2, 50, 60, 1100, 700)}
		assert.Empty(t, findIssues(checkCitations(rows, wide, nil), model.CodeBBoxOutOfRange))
	})
}

func TestCheckCitations_NonSOIPage(t *testing.T) {
	t.Parallel()

	doc := &model.Document{NumPages: 20}
	rows := []model.Row{
		cited(holding([]string{"A"}, "Bond One", "100", t), 7, 10, 10, 100, 100),
		cited(holding([]string{"A"}, "Bond Two", "100", t), 3, 10, 10, 100, 100),
	}
	issues := checkCitations(rows, doc, []int{2, 3, 4})

	out := findIssues(issues, model.CodeRowFromNonSOIPage)
	require.Len(t, out, 1)
	assert.Equal(t, []int{0}, out[0].RowRefs)
}

func TestCheckCitations_RawValueMismatch(t *testing.T) {
	t.Parallel()

	doc := &model.Document{NumPages: 5}

	t.Run("formatting variants agree", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Bond One", "1234567", t)
		row.FairValueRaw = "$1,234,567"
		assert.Empty(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeCitationValueMismatch))
	})

	t.Run("close disagreement is a warning", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Bond One", "1234568", t)
		row.FairValueRaw = "1,234,567"
		out := findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeCitationValueMismatch)
		require.Len(t, out, 1)
		assert.Equal(t, model.SeverityWarning, out[0].Severity)
	})

	t.Run("unrelated digits escalate to error", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Bond One", "888888", t)
		row.FairValueRaw = "1,234,567"
		out := findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeCitationValueMismatch)
		require.Len(t, out, 1)
		assert.Equal(t, model.SeverityError, out[0].Severity)
	})

	t.Run("unparseable raw with structured value", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Bond One", "100", t)
		row.FairValueRaw = "100 200"
		out := findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeCitationValueMismatch)
		require.Len(t, out, 1)
	})

	t.Run("parenthesized negative agrees", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Written Option", "-4500", t)
		row.FairValueRaw = "(4,500)"
		assert.Empty(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeCitationValueMismatch))
	})
}

func TestCheckCitations_MissingRowType(t *testing.T) {
	t.Parallel()

	rows := []model.Row{{SectionPath: []string{"A"}, Label: "mystery"}}
	out := findIssues(checkCitations(rows, &model.Document{NumPages: 5}, nil), model.CodeMissingRowType)
	require.Len(t, out, 1)
	assert.Equal(t, []int{0}, out[0].RowRefs)
}

func TestCheckCitations_Plausibility(t *testing.T) {
	t.Parallel()

	doc := &model.Document{NumPages: 5}

	t.Run("negative fair value flagged", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Ordinary Bond", "-100", t)
		assert.Len(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeNegativeFairValue), 1)
	})

	t.Run("derivative liability exempt", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Written Call Option on XYZ", "-100", t)
		assert.Empty(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodeNegativeFairValue))
	})

	t.Run("implied price below floor", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Penny Position", "1", t)
		row.Quantity = dec(t, "100000000")
		assert.Len(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodePriceTooLow), 1)
	})

	t.Run("implied price above ceiling", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Fat Finger", "5000000000", t)
		row.Quantity = dec(t, "2")
		assert.Len(t, findIssues(checkCitations([]model.Row{row}, doc, nil), model.CodePriceTooHigh), 1)
	})

	t.Run("ordinary price passes", func(t *testing.T) {
		t.Parallel()
		row := holding([]string{"A"}, "Common Stock", "15000", t)
		row.Quantity = dec(t, "100")
		issues := checkCitations([]model.Row{row}, doc, nil)
		assert.Empty(t, findIssues(issues, model.CodePriceTooLow))
		assert.Empty(t, findIssues(issues, model.CodePriceTooHigh))
	})
}

func TestCheckCitations_DateMismatch(t *testing.T) {
	t.Parallel()

	t.Run("different dates flagged", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{NumPages: 5, PeriodEnd: "2024-12-31", CoverDate: "December 31, 2023"}
		assert.Len(t, findIssues(checkCitations(nil, doc, nil), model.CodeDateMismatch), 1)
	})

	t.Run("same date in different formats passes", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{NumPages: 5, PeriodEnd: "2024-12-31", CoverDate: "December 31, 2024"}
		assert.Empty(t, findIssues(checkCitations(nil, doc, nil), model.CodeDateMismatch))
	})

	t.Run("unparseable cover date ignored", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{NumPages: 5, PeriodEnd: "2024-12-31", CoverDate: "fiscal year end"}
		assert.Empty(t, findIssues(checkCitations(nil, doc, nil), model.CodeDateMismatch))
	})
}

func TestCheckDuplicates(t *testing.T) {
	t.Parallel()

	t.Run("same label and value in one section", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{
			holding([]string{"A"}, "Apple Inc.", "500", t),
			holding([]string{"A"}, "apple inc", "500", t),
			holding([]string{"A"}, "Microsoft Corp", "400", t),
		}
		out := checkDuplicates(rows)
		require.Len(t, out, 1)
		assert.Equal(t, model.CodePossibleDuplicateHoldings, out[0].Code)
		assert.Equal(t, []int{0, 1}, out[0].RowRefs)
	})

	t.Run("same name in different sections is fine", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{
			holding([]string{"A"}, "Apple Inc", "500", t),
			holding([]string{"B"}, "Apple Inc", "500", t),
		}
		assert.Empty(t, checkDuplicates(rows))
	})

	t.Run("same name different value is fine", func(t *testing.T) {
		t.Parallel()
		rows := []model.Row{
			holding([]string{"A"}, "Apple Inc", "500", t),
			holding([]string{"A"}, "Apple Inc", "710", t),
		}
		assert.Empty(t, checkDuplicates(rows))
	})
}
