package sanitize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// KeywordConfig is the versioned heuristics vocabulary the sanitizer
// matches against. Keeping it in one named object (optionally loaded from
// YAML) makes reruns reproducible against a known vocabulary version.
type KeywordConfig struct {
	Version int `yaml:"version"`

	// SummaryTable marks preview/"Top N Holdings" blocks. Matched
	// case-insensitively against a block's terminating total label and
	// its shared section path segments.
	SummaryTable []string `yaml:"summary_table"`

	// ColumnHeaders is the vocabulary of table column captions that OCR
	// sometimes emits as holding rows.
	ColumnHeaders []string `yaml:"column_headers"`
}

// DefaultKeywords returns the built-in vocabulary.
func DefaultKeywords() KeywordConfig {
	return KeywordConfig{
		Version: 1,
		SummaryTable: []string{
			"top",
			"largest",
			"summary of",
			"highlights",
			"principal holdings",
		},
		ColumnHeaders: []string{
			"investment",
			"investments",
			"description",
			"security",
			"securities",
			"issuer",
			"fair value",
			"value",
			"cost",
			"amortized cost",
			"principal amount",
			"par amount",
			"notional amount",
			"shares",
			"units",
			"quantity",
			"% of net assets",
			"percent of net assets",
			"interest rate",
			"maturity date",
		},
	}
}

// LoadKeywords reads a keyword vocabulary from a YAML file.
func LoadKeywords(path string) (*KeywordConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sanitize: read keywords %s", path)
	}

	var wrapper struct {
		Keywords KeywordConfig `yaml:"keywords"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "sanitize: parse keywords")
	}

	cfg := wrapper.Keywords
	defaults := DefaultKeywords()
	if len(cfg.SummaryTable) == 0 {
		cfg.SummaryTable = defaults.SummaryTable
	}
	if len(cfg.ColumnHeaders) == 0 {
		cfg.ColumnHeaders = defaults.ColumnHeaders
	}
	return &cfg, nil
}
