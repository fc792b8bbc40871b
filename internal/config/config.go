package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ledgerline/soi-cli/internal/numeric"
	"github.com/ledgerline/soi-cli/internal/sanitize"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Tolerance ToleranceConfig `yaml:"tolerance" mapstructure:"tolerance"`
	Sanitize  SanitizeConfig  `yaml:"sanitize" mapstructure:"sanitize"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// FieldToleranceConfig is one field's reconciliation tolerance: a match
// passes on the absolute bound OR the relative bound.
type FieldToleranceConfig struct {
	Abs float64 `yaml:"abs" mapstructure:"abs"`
	Rel float64 `yaml:"rel" mapstructure:"rel"`
}

// ToleranceConfig configures per-field reconciliation tolerances.
type ToleranceConfig struct {
	FairValue FieldToleranceConfig `yaml:"fair_value" mapstructure:"fair_value"`
	Cost      FieldToleranceConfig `yaml:"cost" mapstructure:"cost"`
	Percent   FieldToleranceConfig `yaml:"percent" mapstructure:"percent"`
}

// Tolerances converts the configured bounds to the engine's decimal form.
func (c ToleranceConfig) Tolerances() numeric.ToleranceConfig {
	conv := func(f FieldToleranceConfig) numeric.FieldTolerance {
		return numeric.FieldTolerance{
			Abs: decimal.NewFromFloat(f.Abs),
			Rel: decimal.NewFromFloat(f.Rel),
		}
	}
	return numeric.ToleranceConfig{
		FairValue: conv(c.FairValue),
		Cost:      conv(c.Cost),
		Percent:   conv(c.Percent),
	}
}

// SanitizeConfig configures the pre-validation repair passes.
type SanitizeConfig struct {
	FixPhantomRows          bool    `yaml:"fix_phantom_rows" mapstructure:"fix_phantom_rows"`
	FixPercents             bool    `yaml:"fix_percents" mapstructure:"fix_percents"`
	DropSummaryTables       bool    `yaml:"drop_summary_tables" mapstructure:"drop_summary_tables"`
	SummaryPercentThreshold float64 `yaml:"summary_percent_threshold" mapstructure:"summary_percent_threshold"`
	RepairPageGaps          bool    `yaml:"repair_page_gaps" mapstructure:"repair_page_gaps"`
	CoverageThreshold       float64 `yaml:"coverage_threshold" mapstructure:"coverage_threshold"`
	GapFillBound            int     `yaml:"gap_fill_bound" mapstructure:"gap_fill_bound"`

	// KeywordsFile optionally overrides the built-in heuristic keyword
	// sets with a versioned YAML file.
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

// Options converts the configured sanitizer settings to engine options,
// loading the keyword file when one is set.
func (c SanitizeConfig) Options() (sanitize.Options, error) {
	opts := sanitize.Options{
		FixPhantomRows:          c.FixPhantomRows,
		FixPercents:             c.FixPercents,
		DropSummaryTables:       c.DropSummaryTables,
		SummaryPercentThreshold: decimal.NewFromFloat(c.SummaryPercentThreshold),
		RepairPageGaps:          c.RepairPageGaps,
		CoverageThreshold:       c.CoverageThreshold,
		GapFillBound:            c.GapFillBound,
		Keywords:                sanitize.DefaultKeywords(),
	}
	if c.KeywordsFile != "" {
		kw, err := sanitize.LoadKeywords(c.KeywordsFile)
		if err != nil {
			return sanitize.Options{}, eris.Wrap(err, "config: load keywords")
		}
		opts.Keywords = *kw
	}
	return opts, nil
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ReportConfig configures batch report output.
type ReportConfig struct {
	Formats []string `yaml:"formats" mapstructure:"formats"`
	Dir     string   `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("soi-cli")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SOI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "soi-runs.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tolerance.fair_value.abs", 1.0)
	v.SetDefault("tolerance.fair_value.rel", 0.001)
	v.SetDefault("tolerance.cost.abs", 1.0)
	v.SetDefault("tolerance.cost.rel", 0.001)
	v.SetDefault("tolerance.percent.abs", 0.01)
	v.SetDefault("tolerance.percent.rel", 0.001)
	v.SetDefault("sanitize.fix_phantom_rows", true)
	v.SetDefault("sanitize.fix_percents", true)
	v.SetDefault("sanitize.drop_summary_tables", true)
	v.SetDefault("sanitize.summary_percent_threshold", 50.0)
	v.SetDefault("sanitize.repair_page_gaps", true)
	v.SetDefault("sanitize.coverage_threshold", 0.70)
	v.SetDefault("sanitize.gap_fill_bound", 3)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("report.formats", []string{"json", "csv", "markdown"})
	v.SetDefault("report.dir", "reports")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.max_body_bytes", 32<<20)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
