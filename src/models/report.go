package models

import (
	"encoding/json"
	"math"
	"time"
)

// MCleanReport summarises a missing-value filter pass.
type MCleanReport struct {
	Dataset         string         `json:"dataset"`
	RowsBefore      int            `json:"rows_before"`
	RowsAfter       int            `json:"rows_after"`
	RowsDropped     int            `json:"rows_dropped"`
	MissingByColumn map[string]int `json:"missing_by_column"`
}

// MColumnStats mirrors a describe() row. Statistics that are undefined for
// the column (std of one value, anything of an empty column) are NaN in
// memory and null in JSON.
type MColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// -----------------------------------------------------------------------------

type columnStatsJSON struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"q25"`
	Median *float64 `json:"median"`
	Q75    *float64 `json:"q75"`
	Max    *float64 `json:"max"`
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func nanIfNil(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

func (s MColumnStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(columnStatsJSON{
		Column: s.Column,
		Count:  s.Count,
		Mean:   finiteOrNil(s.Mean),
		Std:    finiteOrNil(s.Std),
		Min:    finiteOrNil(s.Min),
		Q25:    finiteOrNil(s.Q25),
		Median: finiteOrNil(s.Median),
		Q75:    finiteOrNil(s.Q75),
		Max:    finiteOrNil(s.Max),
	})
}

func (s *MColumnStats) UnmarshalJSON(data []byte) error {
	var raw columnStatsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = MColumnStats{
		Column: raw.Column,
		Count:  raw.Count,
		Mean:   nanIfNil(raw.Mean),
		Std:    nanIfNil(raw.Std),
		Min:    nanIfNil(raw.Min),
		Q25:    nanIfNil(raw.Q25),
		Median: nanIfNil(raw.Median),
		Q75:    nanIfNil(raw.Q75),
		Max:    nanIfNil(raw.Max),
	}
	return nil
}

// -----------------------------------------------------------------------------

// MDatasetSummary is the exploration output for one dataset.
type MDatasetSummary struct {
	Name        string         `json:"name"`
	Rows        int            `json:"rows"`
	ColumnCount int            `json:"column_count"`
	Columns     []string       `json:"columns"`
	DateColumn  string         `json:"date_column"`
	DateLayout  string         `json:"date_layout"`
	FirstDate   time.Time      `json:"first_date"`
	LastDate    time.Time      `json:"last_date"`
	Periodicity string         `json:"periodicity"`
	Cleaning    MCleanReport   `json:"cleaning"`
	Stats       []MColumnStats `json:"stats"`
	Resampled   *MResampleInfo `json:"resampled,omitempty"`
}

// MResampleInfo describes the period-end table derived from a dataset.
type MResampleInfo struct {
	Period           string      `json:"period"`
	Rows             int         `json:"rows"`
	IncompletePeriod []time.Time `json:"incomplete_periods,omitempty"`
}

// MChartPoint is one aligned, fully populated observation pair.
type MChartPoint struct {
	Date      time.Time `json:"date"`
	Primary   float64   `json:"primary"`
	Secondary float64   `json:"secondary"`
}

// MChartData is the renderer contract: points sorted by date, no missing values.
type MChartData struct {
	Name            string        `json:"name"`
	Title           string        `json:"title"`
	XLabel          string        `json:"x_label"`
	Primary         MSeriesRef    `json:"primary"`
	Secondary       MSeriesRef    `json:"secondary"`
	RollingWindow   int           `json:"rolling_window"`
	PrimaryLimits   []float64     `json:"primary_limits,omitempty"`
	SecondaryLimits []float64     `json:"secondary_limits,omitempty"`
	Points          []MChartPoint `json:"points"`
	Correlation     float64       `json:"correlation"`
	BestLag         int           `json:"best_lag"`
	BestLagCorr     float64       `json:"best_lag_correlation"`
}

// MReport is the full result of one pipeline run.
type MReport struct {
	Type        string             `json:"type"` // "INITIAL" or "UPDATE"
	GeneratedAt int64              `json:"generated_at"`
	Datasets    []MDatasetSummary  `json:"datasets"`
	Charts      []MChartData       `json:"charts"`
	Metrics     MProcessingMetrics `json:"processing_metrics"`
}
