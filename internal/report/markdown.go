package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerline/soi-cli/internal/model"
)

// money renders currency amounts with thousands separators. Display only;
// all arithmetic stays in decimal.
var money = message.NewPrinter(language.English)

func formatMoney(d decimal.Decimal) string {
	return money.Sprintf("$%.2f", d.InexactFloat64())
}

func writeBatchMarkdown(path string, results []FileResult) error {
	data := FormatBatchMarkdown(results)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// FormatBatchMarkdown generates the human-readable batch summary.
func FormatBatchMarkdown(results []FileResult) string {
	t := aggregate(results)

	var b strings.Builder
	b.WriteString("# Schedule of Investments Validation Report\n\n")

	// Summary.
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Documents: %d\n", t.files)
	fmt.Fprintf(&b, "- Failed to load: %d\n", t.failed)
	fmt.Fprintf(&b, "- Trustworthy: %d of %d validated\n", t.trustworthy, t.files-t.failed)
	fmt.Fprintf(&b, "- Issues: %d errors, %d warnings\n\n", t.errors, t.warnings)

	// Issue breakdown.
	b.WriteString("## Issues by Code\n")
	if len(t.byCode) == 0 {
		b.WriteString("No issues found.\n\n")
	} else {
		b.WriteString("| Code | Severity | Count |\n")
		b.WriteString("|------|----------|-------|\n")
		for _, code := range sortedCodes(t.byCode) {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", code, model.SeverityFor(code), t.byCode[code])
		}
		b.WriteString("\n")
	}

	// Documents needing attention.
	if len(t.arithmeticFiles) > 0 {
		b.WriteString("## Documents with Arithmetic Errors\n")
		for _, f := range t.arithmeticFiles {
			diff := maxDiffFor(results, f)
			fmt.Fprintf(&b, "- %s (max diff %s)\n", f, formatMoney(diff))
		}
		b.WriteString("\n")
	}
	if len(t.rootMismatchFiles) > 0 {
		b.WriteString("## Documents with Root Total Mismatch\n")
		for _, f := range t.rootMismatchFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	// Load failures.
	var failures []FileResult
	for _, r := range results {
		if r.Report == nil {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		b.WriteString("## Load Failures\n")
		for _, r := range failures {
			fmt.Fprintf(&b, "- %s: %s\n", r.SourceFile, r.Err)
		}
		b.WriteString("\n")
	}

	// Normalization.
	b.WriteString("## Normalization\n")
	if len(t.fixByReason) == 0 {
		b.WriteString("No repairs applied.\n")
	} else {
		reasons := make([]string, 0, len(t.fixByReason))
		for reason := range t.fixByReason {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "- %s: %d\n", reason, t.fixByReason[model.FixReason(reason)])
		}
	}

	return b.String()
}

func maxDiffFor(results []FileResult, sourceFile string) decimal.Decimal {
	for _, r := range results {
		if r.SourceFile == sourceFile && r.Report != nil {
			return r.Report.Summary.MaxDollarDiff
		}
	}
	return decimal.Zero
}
