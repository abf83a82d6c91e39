package analysis

import (
	"sort"
	"time"

	"trend-observer/src/helpers"
	"trend-observer/src/models"
	"trend-observer/src/utils"
)

// TimeSeriesResampler handles calendar period downsampling.
type TimeSeriesResampler struct{}

// PeriodGroup lists the source rows falling in one period, in stable date order.
type PeriodGroup struct {
	Indices []int
	End     time.Time
}

// ResampledTable is a period-end table plus, for each output row, the date of
// the source record that closed the period.
type ResampledTable struct {
	Table    *models.MTable
	Period   string
	Observed []time.Time
}

// -----------------------------------------------------------------------------

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

// PeriodEnd returns the last calendar day (UTC midnight) of the period containing t.
func PeriodEnd(t time.Time, period string) (time.Time, error) {
	d := civil(t)
	switch period {
	case utils.PeriodWeek:
		return d.AddDate(0, 0, (7-int(d.Weekday()))%7), nil
	case utils.PeriodMonth:
		return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC), nil
	case utils.PeriodQuarter:
		qEnd := ((int(d.Month())-1)/3 + 1) * 3
		return time.Date(d.Year(), time.Month(qEnd)+1, 0, 0, 0, 0, 0, time.UTC), nil
	case utils.PeriodYear:
		return time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, helpers.NewValidationError("unknown resample period '%s'", period)
	}
}

// -----------------------------------------------------------------------------

// StableDateOrder returns row indices sorted by date; rows sharing a date keep
// their original relative order.
func StableDateOrder(dates []time.Time) []int {
	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return dates[order[i]].Before(dates[order[j]])
	})
	return order
}

// -----------------------------------------------------------------------------

// ResampleIndices groups row indices by period. Periods without rows are
// absent from the result; groups are ordered by period end.
func (r *TimeSeriesResampler) ResampleIndices(dates []time.Time, period string) ([]PeriodGroup, error) {
	if !utils.IsValidPeriod(period) {
		return nil, helpers.NewValidationError("unknown resample period '%s'", period)
	}
	if len(dates) == 0 {
		return []PeriodGroup{}, nil
	}

	var groups []PeriodGroup
	for _, idx := range StableDateOrder(dates) {
		end, err := PeriodEnd(dates[idx], period)
		if err != nil {
			return nil, err
		}
		if n := len(groups); n > 0 && groups[n-1].End.Equal(end) {
			groups[n-1].Indices = append(groups[n-1].Indices, idx)
			continue
		}
		groups = append(groups, PeriodGroup{Indices: []int{idx}, End: end})
	}

	return groups, nil
}

// -----------------------------------------------------------------------------

// ResampleLast downsamples a table to one row per period. Each column takes the
// last valid value among the period's rows in date order (ties: last in row
// order). Every record must carry a valid date.
func (r *TimeSeriesResampler) ResampleLast(table *models.MTable, period string) (*ResampledTable, error) {
	dates := make([]time.Time, table.Len())
	for i, rec := range table.Records {
		if !rec.Date.Valid {
			return nil, helpers.NewValidationError("table '%s' row %d has no date; clean it before resampling", table.Name, i)
		}
		dates[i] = rec.Date.Time
	}

	groups, err := r.ResampleIndices(dates, period)
	if err != nil {
		return nil, err
	}

	out := table.Empty()
	out.Records = make([]models.MRecord, 0, len(groups))
	observed := make([]time.Time, 0, len(groups))

	for _, g := range groups {
		latest := table.Records[g.Indices[len(g.Indices)-1]]

		rec := models.MRecord{
			Date:   models.MDate{Time: g.End, Valid: true},
			Values: make([]models.MValue, len(table.Columns)),
		}
		for c := range table.Columns {
			for k := len(g.Indices) - 1; k >= 0; k-- {
				if v := table.Records[g.Indices[k]].Values[c]; v.Valid {
					rec.Values[c] = v
					break
				}
			}
		}
		if len(latest.ExtraDates) > 0 {
			rec.ExtraDates = make([]models.MDate, len(latest.ExtraDates))
			for e := range latest.ExtraDates {
				for k := len(g.Indices) - 1; k >= 0; k-- {
					if d := table.Records[g.Indices[k]].ExtraDates[e]; d.Valid {
						rec.ExtraDates[e] = d
						break
					}
				}
			}
		}

		out.Records = append(out.Records, rec)
		observed = append(observed, civil(latest.Date.Time))
	}

	return &ResampledTable{Table: out, Period: period, Observed: observed}, nil
}

// -----------------------------------------------------------------------------

// SortByDate returns a copy of the table ordered by date (stable).
// Records without a date sort first.
func SortByDate(table *models.MTable) *models.MTable {
	dates := make([]time.Time, table.Len())
	for i, rec := range table.Records {
		if rec.Date.Valid {
			dates[i] = rec.Date.Time
		}
	}

	out := table.Empty()
	out.Records = make([]models.MRecord, 0, table.Len())
	for _, idx := range StableDateOrder(dates) {
		out.Records = append(out.Records, models.CloneRecord(table.Records[idx]))
	}
	return out
}
