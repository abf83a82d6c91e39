package analysis

import (
	"fmt"
	"sort"
	"time"

	"trend-observer/src/analysis/core"
	"trend-observer/src/cleaner"
	"trend-observer/src/helpers"
	"trend-observer/src/logger"
	"trend-observer/src/models"
	"trend-observer/src/utils"
)

type AnalysisFacade struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Resampler *TimeSeriesResampler
	// Calendars resolves an exchange MIC for a span of years; replaceable in tests.
	Calendars func(mic string, years ...int) *utils.TradingCalendar
}

// PreparedDataset holds every stage of one dataset. All tables are read-only
// once built.
type PreparedDataset struct {
	Config     models.MDatasetConfig
	Raw        *models.MTable
	Clean      *models.MTable
	Resampled  *ResampledTable
	Cleaning   models.MCleanReport
	Incomplete []time.Time
}

// -----------------------------------------------------------------------------

// Analysis returns the table comparisons read from: resampled when configured.
func (p *PreparedDataset) Analysis() *models.MTable {
	if p.Resampled != nil {
		return p.Resampled.Table
	}
	return p.Clean
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config:    cfg,
		Logger:    log,
		Resampler: &TimeSeriesResampler{},
		Calendars: utils.GetCalendar,
	}
}

// -----------------------------------------------------------------------------

// Prepare cleans, sorts and optionally resamples a loaded table.
func (a *AnalysisFacade) Prepare(cfg models.MDatasetConfig, raw *models.MTable) (*PreparedDataset, error) {
	if n := cleaner.CountMissingRows(raw); n > 0 {
		a.Logger.Info("Dataset %s has %d rows with missing values", cfg.Name, n)
	}

	clean, report := cleaner.DropMissing(raw)
	a.Logger.Info("Dataset %s: dropped %d of %d rows", cfg.Name, report.RowsDropped, report.RowsBefore)

	p := &PreparedDataset{
		Config:   cfg,
		Raw:      raw,
		Clean:    SortByDate(clean),
		Cleaning: report,
	}

	if cfg.Resample == "" {
		return p, nil
	}

	resampled, err := a.Resampler.ResampleLast(p.Clean, cfg.Resample)
	if err != nil {
		return nil, fmt.Errorf("resampling %s: %w", cfg.Name, err)
	}
	p.Resampled = resampled
	a.Logger.Info("Dataset %s: resampled %d rows into %d '%s' periods", cfg.Name, p.Clean.Len(), resampled.Table.Len(), cfg.Resample)

	if cfg.Calendar != "" {
		p.Incomplete = a.incompletePeriods(cfg.Calendar, resampled)
		if len(p.Incomplete) > 0 {
			a.Logger.Warning("Dataset %s: %d periods close before the last %s session", cfg.Name, len(p.Incomplete), cfg.Calendar)
		}
	}

	return p, nil
}

// -----------------------------------------------------------------------------

// incompletePeriods lists period ends whose closing observation predates the
// exchange's last business day of that period.
func (a *AnalysisFacade) incompletePeriods(mic string, r *ResampledTable) []time.Time {
	var out []time.Time
	if r.Table.Len() == 0 {
		return out
	}
	// a week ending early January can close in the previous year
	first := r.Table.Records[0].Date.Time.Year() - 1
	last := r.Table.Records[r.Table.Len()-1].Date.Time.Year()
	tc := a.Calendars(mic, first, last)

	for i, rec := range r.Table.Records {
		lastSession := tc.LastTradingDayOnOrBefore(rec.Date.Time)
		if r.Observed[i].Before(lastSession) {
			out = append(out, rec.Date.Time)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Summarize produces the exploration summary of a prepared dataset.
func (a *AnalysisFacade) Summarize(p *PreparedDataset) models.MDatasetSummary {
	raw := p.Raw
	summary := models.MDatasetSummary{
		Name:        p.Config.Name,
		Rows:        raw.Len(),
		ColumnCount: 1 + len(raw.ExtraDateColumns) + len(raw.Columns),
		Columns:     append([]string(nil), raw.Columns...),
		DateColumn:  raw.DateColumn,
		DateLayout:  raw.DateLayout,
		Cleaning:    p.Cleaning,
	}

	dates := p.Clean.Dates()
	if len(dates) > 0 {
		summary.FirstDate = dates[0]
		summary.LastDate = dates[len(dates)-1]
	}
	summary.Periodicity = InferPeriodicity(dates)

	for _, col := range raw.Columns {
		values, _ := raw.Column(col)
		s := core.Describe(ValidFloats(values))
		summary.Stats = append(summary.Stats, models.MColumnStats{
			Column: col,
			Count:  s.Count,
			Mean:   s.Mean,
			Std:    s.Std,
			Min:    s.Min,
			Q25:    s.Q25,
			Median: s.Median,
			Q75:    s.Q75,
			Max:    s.Max,
		})
		if s.Count > 0 {
			a.Logger.Debug("%s.%s: min %.4g max %.4g", p.Config.Name, col, s.Min, s.Max)
		}
	}

	if p.Resampled != nil {
		summary.Resampled = &models.MResampleInfo{
			Period:           p.Resampled.Period,
			Rows:             p.Resampled.Table.Len(),
			IncompletePeriod: p.Incomplete,
		}
	}

	return summary
}

// -----------------------------------------------------------------------------

type keyedValue struct {
	date  time.Time
	value models.MValue
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) seriesFor(ref models.MSeriesRef, window int, datasets map[string]*PreparedDataset) ([]keyedValue, error) {
	p, ok := datasets[ref.Dataset]
	if !ok {
		return nil, helpers.NewValidationError("unknown dataset '%s'", ref.Dataset)
	}
	table := p.Analysis()

	values, ok := table.Column(ref.Column)
	if !ok {
		return nil, helpers.NewSchemaError("dataset '%s' has no column '%s'", ref.Dataset, ref.Column)
	}
	if window > 0 {
		var err error
		if values, err = RollingMean(values, window); err != nil {
			return nil, err
		}
	}

	out := make([]keyedValue, len(values))
	for i, rec := range table.Records {
		out[i] = keyedValue{date: rec.Date.Time, value: values[i]}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// joinByPeriod keys both series by period end; within a period the last entry wins.
func joinByPeriod(primary, secondary []keyedValue, period string) ([]models.MChartPoint, error) {
	collapse := func(series []keyedValue) (map[time.Time]models.MValue, []time.Time, error) {
		byKey := make(map[time.Time]models.MValue)
		var keys []time.Time
		for _, kv := range series {
			end, err := PeriodEnd(kv.date, period)
			if err != nil {
				return nil, nil, err
			}
			if _, seen := byKey[end]; !seen {
				keys = append(keys, end)
			}
			byKey[end] = kv.value
		}
		return byKey, keys, nil
	}

	pMap, pKeys, err := collapse(primary)
	if err != nil {
		return nil, err
	}
	sMap, _, err := collapse(secondary)
	if err != nil {
		return nil, err
	}

	var points []models.MChartPoint
	for _, k := range pKeys {
		pv := pMap[k]
		sv, ok := sMap[k]
		if !ok || !pv.Valid || !sv.Valid {
			continue
		}
		points = append(points, models.MChartPoint{Date: k, Primary: pv.Float, Secondary: sv.Float})
	}
	return points, nil
}

// -----------------------------------------------------------------------------

// BuildChart aligns the two series of a comparison. Points are sorted by date
// and contain no missing values.
func (a *AnalysisFacade) BuildChart(cmp models.MComparisonConfig, datasets map[string]*PreparedDataset) (models.MChartData, error) {
	chart := models.MChartData{
		Name:            cmp.Name,
		Title:           cmp.Title,
		XLabel:          "Date",
		Primary:         cmp.Primary,
		Secondary:       cmp.Secondary,
		RollingWindow:   cmp.RollingWindow,
		PrimaryLimits:   cmp.PrimaryLimits,
		SecondaryLimits: cmp.SecondaryLimits,
	}
	if chart.Title == "" {
		chart.Title = fmt.Sprintf("%s vs %s", cmp.Primary.Column, cmp.Secondary.Column)
	}
	if chart.Primary.Label == "" {
		chart.Primary.Label = cmp.Primary.Column
	}
	if chart.Secondary.Label == "" {
		chart.Secondary.Label = cmp.Secondary.Column
	}

	primary, err := a.seriesFor(cmp.Primary, cmp.RollingWindow, datasets)
	if err != nil {
		return chart, fmt.Errorf("comparison %s: %w", cmp.Name, err)
	}
	secondary, err := a.seriesFor(cmp.Secondary, cmp.RollingWindow, datasets)
	if err != nil {
		return chart, fmt.Errorf("comparison %s: %w", cmp.Name, err)
	}

	if cmp.Primary.Dataset == cmp.Secondary.Dataset {
		for i := range primary {
			if primary[i].value.Valid && secondary[i].value.Valid {
				chart.Points = append(chart.Points, models.MChartPoint{
					Date:      primary[i].date,
					Primary:   primary[i].value.Float,
					Secondary: secondary[i].value.Float,
				})
			}
		}
	} else {
		period := cmp.Period
		if period == "" {
			period = utils.DefaultPeriod
		}
		if chart.Points, err = joinByPeriod(primary, secondary, period); err != nil {
			return chart, fmt.Errorf("comparison %s: %w", cmp.Name, err)
		}
	}

	sort.SliceStable(chart.Points, func(i, j int) bool {
		return chart.Points[i].Date.Before(chart.Points[j].Date)
	})

	xs := make([]float64, len(chart.Points))
	ys := make([]float64, len(chart.Points))
	for i, pt := range chart.Points {
		xs[i] = pt.Primary
		ys[i] = pt.Secondary
	}
	chart.Correlation = core.CalculateCorrelation(xs, ys)
	chart.BestLag, chart.BestLagCorr = core.BestLag(xs, ys, cmp.MaxLag)

	a.Logger.Info("Chart %s: %d points, correlation %.3f, best lag %d (%.3f)",
		cmp.Name, len(chart.Points), chart.Correlation, chart.BestLag, chart.BestLagCorr)
	return chart, nil
}

// -----------------------------------------------------------------------------

// PrepareAll prepares every loaded dataset in config order.
func (a *AnalysisFacade) PrepareAll(tables map[string]*models.MTable) ([]*PreparedDataset, error) {
	prepared := make([]*PreparedDataset, 0, len(a.Config.Datasets))
	for _, dsCfg := range a.Config.Datasets {
		raw, ok := tables[dsCfg.Name]
		if !ok {
			return nil, helpers.NewValidationError("dataset '%s' was not loaded", dsCfg.Name)
		}
		p, err := a.Prepare(dsCfg, raw)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}
	return prepared, nil
}

// -----------------------------------------------------------------------------

// BuildReport summarises prepared datasets and builds all comparisons.
func (a *AnalysisFacade) BuildReport(prepared []*PreparedDataset) (*models.MReport, error) {
	report := &models.MReport{Type: "INITIAL"}
	byName := make(map[string]*PreparedDataset, len(prepared))

	for _, p := range prepared {
		byName[p.Config.Name] = p
		report.Datasets = append(report.Datasets, a.Summarize(p))
		report.Metrics.RowsDropped += p.Cleaning.RowsDropped
	}

	for _, cmp := range a.Config.Comparisons {
		chart, err := a.BuildChart(cmp, byName)
		if err != nil {
			return nil, err
		}
		report.Charts = append(report.Charts, chart)
	}

	report.GeneratedAt = time.Now().UTC().Unix()
	report.Metrics.DatasetsLoaded = len(prepared)
	report.Metrics.ChartsProduced = len(report.Charts)
	return report, nil
}

// -----------------------------------------------------------------------------

// Run prepares the loaded tables and builds the report.
func (a *AnalysisFacade) Run(tables map[string]*models.MTable) (*models.MReport, []*PreparedDataset, error) {
	start := time.Now()

	prepared, err := a.PrepareAll(tables)
	if err != nil {
		return nil, nil, err
	}
	report, err := a.BuildReport(prepared)
	if err != nil {
		return nil, nil, err
	}

	report.Metrics.RunTimeSeconds = time.Since(start).Seconds()
	return report, prepared, nil
}

// -----------------------------------------------------------------------------

// DerivedTables returns the tables worth exporting: each cleaned table and,
// when resampled, its period-end table named "<dataset>_<period>".
func DerivedTables(prepared []*PreparedDataset) []*models.MTable {
	var out []*models.MTable
	for _, p := range prepared {
		out = append(out, p.Clean)
		if p.Resampled != nil {
			t := *p.Resampled.Table
			t.Name = fmt.Sprintf("%s_%s", p.Config.Name, p.Resampled.Period)
			out = append(out, &t)
		}
	}
	return out
}
