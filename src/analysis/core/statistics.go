package core

import (
	"math"
	"sort"
)

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and population standard deviation.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)))
	return mean, std
}

// -----------------------------------------------------------------------------

// CalculateSampleStd uses the N-1 denominator, as describe() does.
// Fewer than two values yield NaN.
func CalculateSampleStd(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	mean, _ := CalculateMeanStd(data)
	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	return math.Sqrt(varianceSum / float64(len(data)-1))
}

// -----------------------------------------------------------------------------

// Quantile returns the q-th quantile of sorted data with linear interpolation
// between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// -----------------------------------------------------------------------------

// Summary holds count, mean, sample std, min, quartiles and max.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe summarises data. Empty input gives a zero count and NaN statistics.
func Describe(data []float64) Summary {
	if len(data) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mean, _ := CalculateMeanStd(sorted)
	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		Std:    CalculateSampleStd(sorted),
		Min:    sorted[0],
		Q25:    Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q75:    Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// -----------------------------------------------------------------------------

// CalculateCorrelation computes Pearson correlation coefficient.
// Returns 0 for mismatched lengths, fewer than two points or zero variance.
func CalculateCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	n := float64(len(x))

	_, stdX := CalculateMeanStd(x)
	_, stdY := CalculateMeanStd(y)
	if stdX == 0 || stdY == 0 {
		return 0
	}

	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := 0; i < len(x); i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := (n * sumXY) - (sumX * sumY)
	denominator := math.Sqrt(((n * sumX2) - (sumX * sumX)) * ((n * sumY2) - (sumY * sumY)))

	if denominator == 0 {
		return 0
	}

	result := numerator / denominator

	if math.IsNaN(result) {
		return 0
	}

	return result
}

// -----------------------------------------------------------------------------

// BestLag scans lags in [-maxLag, maxLag] and returns the one with the largest
// absolute correlation. A positive lag means x leads y: x[i] pairs with y[i+lag].
// Smaller absolute lags win ties; at least three overlapping points are required.
func BestLag(x, y []float64, maxLag int) (int, float64) {
	if len(x) != len(y) {
		return 0, 0
	}

	bestLag, bestCorr := 0, CalculateCorrelation(x, y)
	for step := 1; step <= maxLag; step++ {
		for _, lag := range []int{step, -step} {
			var xs, ys []float64
			if lag > 0 {
				if lag >= len(x)-2 {
					continue
				}
				xs, ys = x[:len(x)-lag], y[lag:]
			} else {
				if -lag >= len(x)-2 {
					continue
				}
				xs, ys = x[-lag:], y[:len(y)+lag]
			}
			if c := CalculateCorrelation(xs, ys); math.Abs(c) > math.Abs(bestCorr) {
				bestLag, bestCorr = lag, c
			}
		}
	}
	return bestLag, bestCorr
}
