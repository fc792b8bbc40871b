package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// batchColumns defines the ordered batch CSV output columns.
var batchColumns = []string{
	"File",
	"Rows",
	"Holdings",
	"Errors",
	"Warnings",
	"Max Dollar Diff",
	"Root Mismatch",
	"Fixes Applied",
	"Trustworthy",
	"Load Error",
}

func writeBatchCSV(path string, results []FileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(batchColumns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	for _, r := range results {
		if err := w.Write(buildCSVRow(r)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func buildCSVRow(r FileResult) []string {
	if r.Report == nil {
		return []string{r.SourceFile, "", "", "", "", "", "", "", "", r.Err}
	}
	s := r.Report.Summary
	return []string{
		r.SourceFile,
		strconv.Itoa(s.TotalRows),
		strconv.Itoa(s.HoldingCount),
		strconv.Itoa(s.ErrorCount),
		strconv.Itoa(s.WarningCount),
		s.MaxDollarDiff.StringFixed(2),
		strconv.FormatBool(s.RootMismatch),
		strconv.Itoa(s.FixCount),
		strconv.FormatBool(s.Trustworthy),
		"",
	}
}
