package analysis

import (
	"encoding/json"
	"io"
	"math"
	"testing"
	"time"

	"trend-observer/src/logger"
	"trend-observer/src/models"
	"trend-observer/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	l := logger.NewLogger(nil, "test")
	l.SetOutput(io.Discard)
	return l
}

func testFacade(cfg *models.MConfig) *AnalysisFacade {
	a := NewAnalysisFacade(cfg, quietLogger())
	a.Calendars = func(mic string, _ ...int) *utils.TradingCalendar {
		return &utils.TradingCalendar{MIC: mic, Fallback: true, Timezone: time.UTC}
	}
	return a
}

// dailyPrices covers 2020-01-01 .. 2020-03-27 with one gap row; March stops
// on a Friday, two sessions before the month's last business day (Tue 31st).
func dailyPrices() *models.MTable {
	t := &models.MTable{Name: "btc_price", DateColumn: "DATE", DateLayout: "2006-01-02", Columns: []string{"CLOSE", "VOLUME"}}
	v := 1.0
	for day := d(2020, 1, 1); !day.After(d(2020, 3, 27)); day = day.AddDate(0, 0, 1) {
		t.Records = append(t.Records, rec(day, v, v*10))
		v++
	}
	t.Records = append(t.Records, models.MRecord{
		Date:   models.MDate{Time: d(2020, 2, 10), Valid: true},
		Values: []models.MValue{models.Missing(), models.Num(1)},
	})
	return t
}

func monthlySearch() *models.MTable {
	t := &models.MTable{Name: "btc_search", DateColumn: "MONTH", DateLayout: "2006-01", Columns: []string{"BTC_NEWS_SEARCH"}}
	for i, v := range []float64{10, 20, 30, 40} {
		t.Records = append(t.Records, rec(d(2020, time.Month(i+1), 1), v))
	}
	return t
}

func unemployment() *models.MTable {
	t := &models.MTable{Name: "ue", DateColumn: "MONTH", DateLayout: "2006-01", Columns: []string{"UE_BENEFITS_WEB_SEARCH", "UNRATE"}}
	for i := 0; i < 8; i++ {
		t.Records = append(t.Records, rec(d(2004, time.Month(i+1), 1), float64(i+1), float64(10-i)))
	}
	return t
}

func facadeConfig() *models.MConfig {
	return &models.MConfig{
		Datasets: []models.MDatasetConfig{
			{Name: "btc_price", Resample: "M", Calendar: "xnys"},
			{Name: "btc_search"},
			{Name: "ue"},
		},
		Comparisons: []models.MComparisonConfig{
			{
				Name:      "btc_volume_vs_close",
				Primary:   models.MSeriesRef{Dataset: "btc_price", Column: "VOLUME", Label: "Volume"},
				Secondary: models.MSeriesRef{Dataset: "btc_price", Column: "CLOSE"},
			},
			{
				Name:      "btc_search_vs_price",
				Title:     "Bitcoin News Search vs Resampled Price",
				Primary:   models.MSeriesRef{Dataset: "btc_search", Column: "BTC_NEWS_SEARCH"},
				Secondary: models.MSeriesRef{Dataset: "btc_price", Column: "CLOSE"},
				Period:    "M",
			},
			{
				Name:          "ue_rolling",
				Primary:       models.MSeriesRef{Dataset: "ue", Column: "UE_BENEFITS_WEB_SEARCH"},
				Secondary:     models.MSeriesRef{Dataset: "ue", Column: "UNRATE"},
				RollingWindow: 6,
				MaxLag:        1,
			},
		},
	}
}

func loadedTables() map[string]*models.MTable {
	return map[string]*models.MTable{
		"btc_price":  dailyPrices(),
		"btc_search": monthlySearch(),
		"ue":         unemployment(),
	}
}

func TestPrepareCleansSortsAndResamples(t *testing.T) {
	cfg := facadeConfig()
	a := testFacade(cfg)

	p, err := a.Prepare(cfg.Datasets[0], dailyPrices())
	require.NoError(t, err)

	assert.Equal(t, 1, p.Cleaning.RowsDropped)
	assert.Equal(t, 87, p.Clean.Len())
	require.NotNil(t, p.Resampled)
	assert.Equal(t, []time.Time{d(2020, 1, 31), d(2020, 2, 29), d(2020, 3, 31)}, p.Resampled.Table.Dates())
	assert.Equal(t, models.Num(31), p.Resampled.Table.Records[0].Values[0])
	assert.Equal(t, models.Num(60), p.Resampled.Table.Records[1].Values[0])
	assert.Equal(t, []time.Time{d(2020, 3, 31)}, p.Incomplete)
	assert.Same(t, p.Resampled.Table, p.Analysis())
}

func TestPrepareWithExchangeCalendar(t *testing.T) {
	cfg := models.MDatasetConfig{Name: "tesla", Resample: "M", Calendar: "xnys"}
	a := NewAnalysisFacade(&models.MConfig{Datasets: []models.MDatasetConfig{cfg}}, quietLogger())

	// 2019-08-30 is the last NYSE session of August; July's data stops on
	// the 3rd, weeks before the month's last session
	raw := &models.MTable{Name: "tesla", DateColumn: "DATE", Columns: []string{"CLOSE"}, Records: []models.MRecord{
		rec(d(2004, 6, 30), 1),
		rec(d(2019, 7, 3), 2),
		rec(d(2019, 8, 29), 3),
		rec(d(2019, 8, 30), 4),
	}}

	var p *PreparedDataset
	var err error
	require.NotPanics(t, func() { p, err = a.Prepare(cfg, raw) })
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2019, 7, 31)}, p.Incomplete)
}

func TestRunBuildsCharts(t *testing.T) {
	report, prepared, err := testFacade(facadeConfig()).Run(loadedTables())
	require.NoError(t, err)
	require.Len(t, prepared, 3)
	require.Len(t, report.Charts, 3)
	assert.Equal(t, 3, report.Metrics.DatasetsLoaded)
	assert.Equal(t, 1, report.Metrics.RowsDropped)

	same := report.Charts[0]
	assert.Equal(t, "Volume", same.Primary.Label)
	assert.Equal(t, "CLOSE", same.Secondary.Label)
	assert.Equal(t, "VOLUME vs CLOSE", same.Title)
	require.Len(t, same.Points, 3)
	assert.Equal(t, models.MChartPoint{Date: d(2020, 1, 31), Primary: 310, Secondary: 31}, same.Points[0])
	assert.InDelta(t, 1.0, same.Correlation, 1e-9)

	// April search has no price month, so the join keeps three months
	cross := report.Charts[1]
	require.Len(t, cross.Points, 3)
	assert.Equal(t, models.MChartPoint{Date: d(2020, 2, 29), Primary: 20, Secondary: 60}, cross.Points[1])

	// rolling warm-up rows are dropped from the renderer payload
	rolling := report.Charts[2]
	require.Len(t, rolling.Points, 3)
	assert.Equal(t, d(2004, 6, 1), rolling.Points[0].Date)
	assert.Equal(t, 3.5, rolling.Points[0].Primary)
	assert.Equal(t, 7.5, rolling.Points[0].Secondary)
	for i := 1; i < len(rolling.Points); i++ {
		assert.True(t, rolling.Points[i].Date.After(rolling.Points[i-1].Date))
	}
	assert.InDelta(t, -1.0, rolling.Correlation, 1e-9)
}

func TestSummarize(t *testing.T) {
	report, _, err := testFacade(facadeConfig()).Run(loadedTables())
	require.NoError(t, err)

	btc := report.Datasets[0]
	assert.Equal(t, "btc_price", btc.Name)
	assert.Equal(t, 88, btc.Rows)
	assert.Equal(t, 3, btc.ColumnCount)
	assert.Equal(t, "daily", btc.Periodicity)
	assert.Equal(t, d(2020, 1, 1), btc.FirstDate)
	assert.Equal(t, d(2020, 3, 27), btc.LastDate)
	require.NotNil(t, btc.Resampled)
	assert.Equal(t, 3, btc.Resampled.Rows)

	closeStats := btc.Stats[0]
	assert.Equal(t, "CLOSE", closeStats.Column)
	assert.Equal(t, 87, closeStats.Count)
	assert.Equal(t, 1.0, closeStats.Min)
	assert.Equal(t, 87.0, closeStats.Max)

	assert.Equal(t, "monthly", report.Datasets[2].Periodicity)
	assert.Nil(t, report.Datasets[2].Resampled)
}

func TestRunSingleRowDatasetEncodes(t *testing.T) {
	cfg := &models.MConfig{
		Datasets: []models.MDatasetConfig{{Name: "ue"}},
		Comparisons: []models.MComparisonConfig{{
			Name:      "ue",
			Primary:   models.MSeriesRef{Dataset: "ue", Column: "UE_BENEFITS_WEB_SEARCH"},
			Secondary: models.MSeriesRef{Dataset: "ue", Column: "UNRATE"},
		}},
	}
	ue := unemployment()
	ue.Records = ue.Records[:1]

	report, _, err := testFacade(cfg).Run(map[string]*models.MTable{"ue": ue})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(report.Datasets[0].Stats[0].Std))

	_, err = json.MarshalIndent(report, "", "  ")
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	cfg := facadeConfig()
	tables := loadedTables()
	delete(tables, "ue")
	_, _, err := testFacade(cfg).Run(tables)
	assert.Error(t, err)

	cfg = facadeConfig()
	cfg.Comparisons[0].Primary.Column = "OPEN"
	_, _, err = testFacade(cfg).Run(loadedTables())
	assert.Error(t, err)
}

func TestDerivedTables(t *testing.T) {
	_, prepared, err := testFacade(facadeConfig()).Run(loadedTables())
	require.NoError(t, err)

	tables := DerivedTables(prepared)
	require.Len(t, tables, 4)
	assert.Equal(t, "btc_price", tables[0].Name)
	assert.Equal(t, "btc_price_M", tables[1].Name)
	assert.Equal(t, "btc_price", prepared[0].Resampled.Table.Name)
}

func TestInferPeriodicity(t *testing.T) {
	assert.Equal(t, "weekly", InferPeriodicity([]time.Time{d(2020, 1, 5), d(2020, 1, 12), d(2020, 1, 19)}))
	assert.Equal(t, "yearly", InferPeriodicity([]time.Time{d(2018, 1, 1), d(2019, 1, 1), d(2020, 1, 1)}))
	assert.Equal(t, "unknown", InferPeriodicity([]time.Time{d(2020, 1, 1)}))
}
