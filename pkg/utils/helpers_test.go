package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.35, RoundTo(12.3456, 2))
	assert.Equal(t, 12.3, RoundTo(12.3456, 1))
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 90))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 90))
	assert.InDelta(t, 45.1, Percentile([]float64{50, 1}, 90), 1e-9)
	assert.InDelta(t, 5.5, Percentile([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 50), 1e-9)

	in := []float64{3, 1, 2}
	Percentile(in, 50)
	assert.Equal(t, []float64{3, 1, 2}, in, "input must not be reordered")
}

func TestWeightedMean(t *testing.T) {
	assert.InDelta(t, (1*1+2*2+3*3)/6.0, WeightedMean([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, WeightedMean(nil, nil))
}
