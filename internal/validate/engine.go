// Package validate implements the hierarchical reconciliation and
// anomaly-classification engine: it builds an aggregation tree from the
// sanitized row list, recomputes sums bottom-up, compares them against
// every reported subtotal and total under tolerance, runs the per-row
// provenance checks, and emits one ordered, typed issue list.
//
// The engine is pure: no I/O, no shared state, no errors. Malformed or
// missing input becomes issues with explicit severity, so callers always
// receive a complete report. Safe for concurrent use as long as each call
// gets its own document.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/numeric"
	"github.com/ledgerline/soi-cli/internal/sanitize"
)

// Engine bundles the run configuration. The zero value is unusable;
// start from New and override as needed.
type Engine struct {
	Tolerance numeric.ToleranceConfig
	Sanitize  sanitize.Options
}

// New returns an Engine with production defaults.
func New() Engine {
	return Engine{
		Tolerance: numeric.DefaultTolerances(),
		Sanitize:  sanitize.DefaultOptions(),
	}
}

// Validate sanitizes and reconciles one document. It never fails: a
// document with zero rows produces a report saying so.
func (e Engine) Validate(doc *model.Document) *model.Report {
	res := sanitize.Run(doc, e.Sanitize)

	report := &model.Report{
		JobID:         doc.JobID,
		SourceFile:    doc.SourceFile,
		SanitizedRows: res.Rows,
		FixLog:        res.FixLog,
		SOIPages:      res.SOIPages,
	}

	var issues []model.Issue
	var root *sectionNode
	if len(res.Rows) == 0 {
		issues = append(issues, model.NewIssue(model.CodeNoRowsExtracted,
			"no rows survived extraction and sanitization"))
	} else {
		var treeIssues []model.Issue
		root, treeIssues = buildTree(res.Rows)
		root.computeSums(res.Rows)

		issues = append(issues, treeIssues...)
		issues = append(issues, checkArithmetic(root, res.Rows, doc, e.Tolerance)...)
		issues = append(issues, checkCitations(res.Rows, doc, res.SOIPages)...)
		issues = append(issues, checkDuplicates(res.Rows)...)
	}

	if len(res.FixLog) > 0 {
		issues = append(issues, normalizationIssue(res))
	}

	sortIssues(issues)
	report.Issues = issues
	report.Summary = buildSummary(res, issues, root, doc)
	return report
}

// normalizationIssue summarizes the sanitizer's fix log as one advisory
// issue, with per-reason counts so the report reads without the log.
func normalizationIssue(res sanitize.Result) model.Issue {
	counts := make(map[model.FixReason]int)
	var order []model.FixReason
	for _, entry := range res.FixLog {
		if _, seen := counts[entry.Reason]; !seen {
			order = append(order, entry.Reason)
		}
		counts[entry.Reason]++
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	parts := make([]string, 0, len(order))
	for _, reason := range order {
		parts = append(parts, fmt.Sprintf("%s x%d", reason, counts[reason]))
	}
	return model.NewIssue(model.CodeNormalizationApplied,
		fmt.Sprintf("sanitizer applied %d fixes: %s", len(res.FixLog), strings.Join(parts, ", ")))
}
