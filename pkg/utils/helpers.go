package utils

import (
	"math"
	"sort"
)

// Clamp limits a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp01 limits a value to the unit interval
func Clamp01(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return Clamp(value, 0, 1)
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
// The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := Clamp(p, 0, 100) / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	return Lerp(sorted[lower], sorted[upper], rank-float64(lower))
}

// WeightedMean returns sum(w*v)/sum(w). Mismatched lengths use the shorter
// slice; a zero total weight yields 0.
func WeightedMean(values, weights []float64) float64 {
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}

	var sum, total float64
	for i := 0; i < n; i++ {
		sum += values[i] * weights[i]
		total += weights[i]
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
