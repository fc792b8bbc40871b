package report

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/soi-cli/internal/model"
)

func writeDocumentJSON(path string, rep *model.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal document report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// batchJSONEntry keeps the batch JSON small: summaries only, with the full
// per-document reports left to WriteDocument.
type batchJSONEntry struct {
	SourceFile string         `json:"source_file"`
	Err        string         `json:"error,omitempty"`
	Summary    *model.Summary `json:"summary,omitempty"`
}

func writeBatchJSON(path string, results []FileResult) error {
	entries := make([]batchJSONEntry, 0, len(results))
	for _, r := range results {
		e := batchJSONEntry{SourceFile: r.SourceFile, Err: r.Err}
		if r.Report != nil {
			s := r.Report.Summary
			e.Summary = &s
		}
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal batch report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}
