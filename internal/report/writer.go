// Package report renders validation results for people and downstream
// tooling: per-document JSON, and batch-level CSV, Markdown, and XLSX.
package report

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/model"
)

// FileResult is the outcome of validating one input file. Exactly one of
// Report and Err is set: files that failed to load carry the error string
// and no report.
type FileResult struct {
	SourceFile string        `json:"source_file"`
	Err        string        `json:"error,omitempty"`
	Report     *model.Report `json:"report,omitempty"`
}

// Writer renders batch results into a directory, one artifact per
// configured format.
type Writer struct {
	Dir     string
	Formats []string
}

// NewWriter creates a Writer. Unknown formats are rejected at write time,
// not here, so config errors surface with the file they would have produced.
func NewWriter(dir string, formats []string) *Writer {
	return &Writer{Dir: dir, Formats: formats}
}

// WriteBatch renders all configured formats and returns the paths written.
func (w *Writer) WriteBatch(results []FileResult) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create output dir %s", w.Dir)
	}

	log := zap.L().With(zap.String("component", "report.writer"))

	var written []string
	for _, format := range w.Formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(format) {
		case "json":
			path = filepath.Join(w.Dir, "batch_report.json")
			err = writeBatchJSON(path, results)
		case "csv":
			path = filepath.Join(w.Dir, "batch_report.csv")
			err = writeBatchCSV(path, results)
		case "markdown", "md":
			path = filepath.Join(w.Dir, "batch_report.md")
			err = writeBatchMarkdown(path, results)
		case "xlsx":
			path = filepath.Join(w.Dir, "batch_report.xlsx")
			err = writeBatchXLSX(path, results)
		default:
			return written, eris.Errorf("report: unknown format %q", format)
		}
		if err != nil {
			return written, err
		}
		log.Info("wrote batch report", zap.String("format", format), zap.String("path", path))
		written = append(written, path)
	}
	return written, nil
}

// WriteDocument writes one document's full report as pretty-printed JSON,
// named after its source file.
func (w *Writer) WriteDocument(rep *model.Report) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "report: create output dir %s", w.Dir)
	}
	base := strings.TrimSuffix(filepath.Base(rep.SourceFile), filepath.Ext(rep.SourceFile))
	if base == "" {
		base = "document"
	}
	path := filepath.Join(w.Dir, base+".report.json")
	return path, writeDocumentJSON(path, rep)
}

// batchTotals aggregates per-file summaries for the markdown and xlsx
// renderers.
type batchTotals struct {
	files       int
	failed      int
	trustworthy int
	errors      int
	warnings    int
	byCode      map[model.IssueCode]int
	fixByReason map[model.FixReason]int

	arithmeticFiles   []string
	rootMismatchFiles []string
}

func aggregate(results []FileResult) batchTotals {
	t := batchTotals{
		byCode:      make(map[model.IssueCode]int),
		fixByReason: make(map[model.FixReason]int),
	}
	for _, r := range results {
		t.files++
		if r.Report == nil {
			t.failed++
			continue
		}
		s := r.Report.Summary
		t.errors += s.ErrorCount
		t.warnings += s.WarningCount
		if s.Trustworthy {
			t.trustworthy++
		}
		if s.HasArithmeticError {
			t.arithmeticFiles = append(t.arithmeticFiles, r.SourceFile)
		}
		if s.RootMismatch {
			t.rootMismatchFiles = append(t.rootMismatchFiles, r.SourceFile)
		}
		for code, n := range s.IssuesByCode {
			t.byCode[code] += n
		}
		for _, fix := range r.Report.FixLog {
			t.fixByReason[fix.Reason]++
		}
	}
	sort.Strings(t.arithmeticFiles)
	sort.Strings(t.rootMismatchFiles)
	return t
}

// sortedCodes returns the issue codes of m ordered by count descending,
// ties broken by code.
func sortedCodes(m map[model.IssueCode]int) []model.IssueCode {
	codes := make([]model.IssueCode, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		if m[codes[i]] != m[codes[j]] {
			return m[codes[i]] > m[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return codes
}
