package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no soi-cli.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "soi-runs.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 1.0, cfg.Tolerance.FairValue.Abs, 0.0001)
	assert.InDelta(t, 0.001, cfg.Tolerance.FairValue.Rel, 0.0001)
	assert.InDelta(t, 0.01, cfg.Tolerance.Percent.Abs, 0.0001)
	assert.True(t, cfg.Sanitize.FixPhantomRows)
	assert.True(t, cfg.Sanitize.DropSummaryTables)
	assert.InDelta(t, 50.0, cfg.Sanitize.SummaryPercentThreshold, 0.0001)
	assert.InDelta(t, 0.70, cfg.Sanitize.CoverageThreshold, 0.0001)
	assert.Equal(t, 3, cfg.Sanitize.GapFillBound)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.Equal(t, []string{"json", "csv", "markdown"}, cfg.Report.Formats)
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 10.0, cfg.Server.RateLimit, 0.0001)
	assert.Equal(t, 20, cfg.Server.RateBurst)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/soi
log:
  level: debug
  format: console
tolerance:
  fair_value:
    abs: 2.5
server:
  port: 9090
batch:
  max_concurrent: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "soi-cli.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/soi", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 2.5, cfg.Tolerance.FairValue.Abs, 0.0001)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.001, cfg.Tolerance.FairValue.Rel, 0.0001)
	assert.Equal(t, 3, cfg.Sanitize.GapFillBound)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "soi-cli.yaml"), []byte(yaml), 0644))

	t.Setenv("SOI_STORE_DRIVER", "postgres")
	t.Setenv("SOI_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("SOI_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestTolerances(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	tol := cfg.Tolerance.Tolerances()
	assert.True(t, tol.FairValue.Abs.Equal(decimal.NewFromInt(1)))
	assert.True(t, tol.Percent.Abs.Equal(decimal.NewFromFloat(0.01)))

	// Configured bounds behave like the engine defaults.
	assert.True(t, tol.FairValue.Within(decimal.NewFromInt(1000), decimal.NewFromInt(1001)))
	assert.False(t, tol.FairValue.Within(decimal.NewFromInt(1000), decimal.NewFromInt(1050)))
}

func TestSanitizeOptions(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	opts, err := cfg.Sanitize.Options()
	require.NoError(t, err)
	assert.True(t, opts.FixPhantomRows)
	assert.True(t, opts.SummaryPercentThreshold.Equal(decimal.NewFromInt(50)))
	assert.NotEmpty(t, opts.Keywords.SummaryTable)
}

func TestSanitizeOptions_KeywordsFile(t *testing.T) {
	dir := chtemp(t)

	kw := `
keywords:
  version: 2
  summary_table:
    - "ten largest"
`
	path := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(kw), 0644))

	cfg := SanitizeConfig{KeywordsFile: path}
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Keywords.Version)
	assert.Contains(t, opts.Keywords.SummaryTable, "ten largest")
}

func TestSanitizeOptions_KeywordsFileMissing(t *testing.T) {
	cfg := SanitizeConfig{KeywordsFile: "/nonexistent/keywords.yaml"}
	_, err := cfg.Options()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
