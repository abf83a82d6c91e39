package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: trends
log_level: DEBUG
datasets:
  - name: btc_price
    path: data/Daily Bitcoin Price.csv
    date_columns: [DATE]
    columns: [CLOSE, VOLUME]
    resample: M
  - name: unemployment
    path: data/UE Benefits Search vs UE Rate 2004-19.csv
    date_columns: [MONTH]
comparisons:
  - name: btc_close_vs_volume
    primary: {dataset: btc_price, column: VOLUME}
    secondary: {dataset: btc_price, column: CLOSE}
    secondary_limits: [0, 14500]
  - name: ue_rolling
    primary: {dataset: unemployment, column: UE_BENEFITS_WEB_SEARCH}
    secondary: {dataset: unemployment, column: UNRATE}
    rolling_window: 6
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "trends", cfg.Name)
	assert.Equal(t, "none", cfg.Storage.DBType)
	assert.Equal(t, "report.json", cfg.ReportPath)
	assert.Equal(t, "csv", cfg.Datasets[0].Format)
	assert.Equal(t, ",", cfg.Datasets[1].Delimiter)
	assert.Equal(t, "M", cfg.Comparisons[0].Period)
	assert.Equal(t, 6, cfg.Comparisons[1].RollingWindow)

	ds, ok := cfg.Dataset("btc_price")
	require.True(t, ok)
	assert.Equal(t, []string{"CLOSE", "VOLUME"}, ds.Columns)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no datasets": `name: x`,
		"unknown dataset in comparison": `
datasets: [{name: a, path: a.csv, date_columns: [DATE]}]
comparisons: [{name: c, primary: {dataset: a, column: X}, secondary: {dataset: b, column: Y}}]`,
		"bad resample": `
datasets: [{name: a, path: a.csv, date_columns: [DATE], resample: D}]`,
		"three date columns": `
datasets: [{name: a, path: a.csv, date_columns: [A, B, C]}]`,
		"duplicate names": `
datasets: [{name: a, path: a.csv, date_columns: [D]}, {name: a, path: b.csv, date_columns: [D]}]`,
		"sqlite without path": `
storage: {db_type: sqlite}
datasets: [{name: a, path: a.csv, date_columns: [D]}]`,
		"inverted limits": `
datasets: [{name: a, path: a.csv, date_columns: [D]}]
comparisons: [{name: c, primary: {dataset: a, column: X}, secondary: {dataset: a, column: Y}, primary_limits: [10, 0]}]`,
		"low port": `
port: 80
datasets: [{name: a, path: a.csv, date_columns: [D]}]`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestNewConfigResolvesPathsAndSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0644))

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "x.csv"), cfg.ResolvePath("data/x.csv"))
	assert.Equal(t, "/abs/x.csv", cfg.ResolvePath("/abs/x.csv"))

	out := filepath.Join(dir, "saved.yaml")
	require.NoError(t, cfg.Save(out))

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(saved), "columns: []")

	again, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Datasets, again.Datasets)
	assert.Equal(t, cfg.Comparisons, again.Comparisons)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
