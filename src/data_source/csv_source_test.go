package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trend-observer/src/helpers"
	"trend-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const btcPriceCSV = `DATE,CLOSE,VOLUME
2014-09-17,457.334015,21056800
2014-09-18,424.440002,34483200
2014-09-19,,
2014-09-20,408.903992,36863600
`

func btcConfig() models.MDatasetConfig {
	return models.MDatasetConfig{
		Name:        "btc_price",
		Delimiter:   ",",
		DateColumns: []string{"DATE"},
	}
}

func TestCSVLoadParsesSchema(t *testing.T) {
	src := NewCSVSource(btcConfig(), "", nil)
	table, err := src.LoadFromReader(strings.NewReader(btcPriceCSV))
	require.NoError(t, err)

	assert.Equal(t, "DATE", table.DateColumn)
	assert.Equal(t, "2006-01-02", table.DateLayout)
	assert.Equal(t, []string{"CLOSE", "VOLUME"}, table.Columns)
	require.Equal(t, 4, table.Len())

	first := table.Records[0]
	assert.True(t, first.Date.Valid)
	assert.Equal(t, time.Date(2014, 9, 17, 0, 0, 0, 0, time.UTC), first.Date.Time)
	assert.Equal(t, models.Num(457.334015), first.Values[0])
	assert.Equal(t, models.Num(21056800), first.Values[1])

	missing := table.Records[2]
	assert.False(t, missing.Values[0].Valid)
	assert.False(t, missing.Values[1].Valid)
}

func TestCSVLoadSelectsConfiguredColumns(t *testing.T) {
	cfg := btcConfig()
	cfg.Columns = []string{"VOLUME"}
	table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(btcPriceCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"VOLUME"}, table.Columns)
	assert.Equal(t, models.Num(34483200), table.Records[1].Values[0])
}

func TestCSVLoadMonthLayout(t *testing.T) {
	data := "MONTH,UE_BENEFITS_WEB_SEARCH,UNRATE\n2004-01,34,5.7\n2004-02,33,5.6\n"
	cfg := models.MDatasetConfig{Name: "ue", Delimiter: ",", DateColumns: []string{"MONTH"}}

	table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "2006-01", table.DateLayout)
	assert.Equal(t, time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC), table.Records[1].Date.Time)
}

func TestCSVLoadSecondDateColumn(t *testing.T) {
	data := "MONTH,RELEASED,VALUE\n2020-01,2020-02-07,3.5\n2020-02,,3.6\n"
	cfg := models.MDatasetConfig{Name: "rel", Delimiter: ",", DateColumns: []string{"MONTH", "RELEASED"}}

	table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"RELEASED"}, table.ExtraDateColumns)
	assert.Equal(t, []string{"VALUE"}, table.Columns)
	assert.True(t, table.Records[0].ExtraDates[0].Valid)
	assert.False(t, table.Records[1].ExtraDates[0].Valid)
}

func TestCSVLoadSemicolonDelimiter(t *testing.T) {
	data := "DATE;CLOSE\n2020-01-02;10\n"
	cfg := models.MDatasetConfig{Name: "semi", Delimiter: ";", DateColumns: []string{"DATE"}}
	table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, models.Num(10), table.Records[0].Values[0])
}

func TestCSVLoadMixedPaddedDates(t *testing.T) {
	data := "DATE,CLOSE\n01/15/2020,1\n1/5/2020,2\n12/3/2020,3\n"
	cfg := models.MDatasetConfig{Name: "mixed", Delimiter: ",", DateColumns: []string{"DATE"}}

	table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "1/2/2006", table.DateLayout)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), table.Records[0].Date.Time)
	assert.Equal(t, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), table.Records[1].Date.Time)
}

func TestCSVLoadFailures(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		cfg    func(*models.MDatasetConfig)
		schema bool
	}{
		{name: "unparseable date", data: "DATE,CLOSE\n2020-01-01,1\nnot-a-date,2\n"},
		{name: "undetectable date", data: "DATE,CLOSE\nyesterday,1\n"},
		{name: "missing date column", data: "DAY,CLOSE\n2020-01-01,1\n", schema: true},
		{name: "missing value column", data: "DATE,CLOSE\n2020-01-01,1\n", schema: true,
			cfg: func(c *models.MDatasetConfig) { c.Columns = []string{"OPEN"} }},
		{name: "non numeric value", data: "DATE,CLOSE\n2020-01-01,abc\n", schema: true},
		{name: "ragged row", data: "DATE,CLOSE\n2020-01-01,1,2\n"},
		{name: "empty", data: ""},
		{name: "configured layout mismatch", data: "DATE,CLOSE\n2020-01-01,1\n",
			cfg: func(c *models.MDatasetConfig) { c.DateFormat = "01/02/2006" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := btcConfig()
			if tc.cfg != nil {
				tc.cfg(&cfg)
			}
			table, err := NewCSVSource(cfg, "", nil).LoadFromReader(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, helpers.IsFatal(err))
			if tc.schema {
				var se *helpers.SchemaError
				assert.True(t, errors.As(err, &se), "expected schema error, got %v", err)
			}
		})
	}
}

func TestCSVLoadMissingFile(t *testing.T) {
	src := NewCSVSource(btcConfig(), filepath.Join(t.TempDir(), "absent.csv"), nil)
	_, err := src.Load()
	var le *helpers.LoadError
	assert.True(t, errors.As(err, &le))
}

func TestCSVLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Daily Bitcoin Price.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff"+btcPriceCSV), 0644))

	src, err := NewDataSource(btcConfig(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "btc_price", src.Name())

	table, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, "DATE", table.DateColumn)
}

func TestDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2014-09-17", "2004-01", "2019-12-31", "2020-02-29"} {
		layout, ok := DetectLayout(s)
		require.True(t, ok, s)
		parsed, err := ParseDate(s, layout)
		require.NoError(t, err)
		assert.Equal(t, s, FormatDate(parsed, layout))
	}
}

func TestNewDataSourceRejectsUnknownFormat(t *testing.T) {
	_, err := NewDataSource(models.MDatasetConfig{Name: "x", Format: "parquet"}, "x", nil)
	assert.Error(t, err)
}
