package report

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// writeBatchXLSX renders a two-sheet workbook: per-file summaries and a
// flat list of every issue across the batch.
func writeBatchXLSX(path string, results []FileResult) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, results); err != nil {
		return err
	}
	if err := addIssuesSheet(f, results); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, results []FileResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	header := sheet.AddRow()
	for _, col := range batchColumns {
		header.AddCell().Value = col
	}

	for _, r := range results {
		row := sheet.AddRow()
		for _, v := range buildCSVRow(r) {
			row.AddCell().Value = v
		}
	}
	return nil
}

var issueColumns = []string{"File", "Code", "Severity", "Section", "Message", "Diff"}

func addIssuesSheet(f *xlsx.File, results []FileResult) error {
	sheet, err := f.AddSheet("Issues")
	if err != nil {
		return eris.Wrap(err, "report: add issues sheet")
	}

	header := sheet.AddRow()
	for _, col := range issueColumns {
		header.AddCell().Value = col
	}

	for _, r := range results {
		if r.Report == nil {
			continue
		}
		for _, issue := range r.Report.Issues {
			row := sheet.AddRow()
			row.AddCell().Value = r.SourceFile
			row.AddCell().Value = string(issue.Code)
			row.AddCell().Value = string(issue.Severity)
			row.AddCell().Value = strings.Join(issue.SectionPath, " > ")
			row.AddCell().Value = issue.Message
			if issue.NumericDiff != nil {
				row.AddCell().Value = issue.NumericDiff.StringFixed(2)
			} else {
				row.AddCell().Value = ""
			}
		}
	}
	return nil
}
