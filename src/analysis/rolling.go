package analysis

import (
	"trend-observer/src/helpers"
	"trend-observer/src/models"
)

// -----------------------------------------------------------------------------

// RollingMean computes a strictly trailing moving average. Position i holds the
// mean of values[i-window+1 .. i]; it is invalid while fewer than window values
// exist or when any value in the window is missing.
func RollingMean(values []models.MValue, window int) ([]models.MValue, error) {
	if window <= 0 {
		return nil, helpers.NewValidationError("rolling window must be positive, got %d", window)
	}

	out := make([]models.MValue, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		valid := true
		for _, v := range values[i-window+1 : i+1] {
			if !v.Valid {
				valid = false
				break
			}
			sum += v.Float
		}
		if valid {
			out[i] = models.Num(sum / float64(window))
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// RollingMeanColumn applies RollingMean to one column of a table.
func RollingMeanColumn(table *models.MTable, column string, window int) ([]models.MValue, error) {
	values, ok := table.Column(column)
	if !ok {
		return nil, helpers.NewSchemaError("table '%s' has no column '%s'", table.Name, column)
	}
	return RollingMean(values, window)
}

// -----------------------------------------------------------------------------

// FromFloats wraps plain numbers as valid cells.
func FromFloats(f []float64) []models.MValue {
	out := make([]models.MValue, len(f))
	for i, v := range f {
		out[i] = models.Num(v)
	}
	return out
}

// -----------------------------------------------------------------------------

// ValidFloats returns the valid values only.
func ValidFloats(values []models.MValue) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}
