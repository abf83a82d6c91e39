package analysis

import (
	"sort"
	"time"
)

// InferPeriodicity names the sampling frequency from the median gap between
// consecutive distinct dates.
func InferPeriodicity(dates []time.Time) string {
	if len(dates) < 2 {
		return "unknown"
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		if g := sorted[i].Sub(sorted[i-1]).Hours() / 24; g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		return "unknown"
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median <= 1.5:
		return "daily"
	case median >= 5 && median <= 9:
		return "weekly"
	case median >= 27 && median <= 32:
		return "monthly"
	case median >= 85 && median <= 95:
		return "quarterly"
	case median >= 360 && median <= 370:
		return "yearly"
	default:
		return "irregular"
	}
}
