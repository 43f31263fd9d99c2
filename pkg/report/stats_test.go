package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBoxStats(t *testing.T) {
	s, err := ComputeBoxStats([]float64{100, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	require.NoError(t, err)

	assert.Equal(t, 10, s.N)
	assert.InDelta(t, 3.25, s.Q1, 1e-9)
	assert.InDelta(t, 5.5, s.Median, 1e-9)
	assert.InDelta(t, 7.75, s.Q3, 1e-9)
	assert.InDelta(t, -3.5, s.LowerFence, 1e-9)
	assert.InDelta(t, 14.5, s.UpperFence, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 9.0, s.Max, "whisker ends at the largest value inside the fence")
	assert.Equal(t, []float64{100}, s.Outliers)
}

func TestComputeBoxStatsSingleValue(t *testing.T) {
	s, err := ComputeBoxStats([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, BoxStats{N: 1, Min: 42, Q1: 42, Median: 42, Q3: 42, Max: 42, LowerFence: 42, UpperFence: 42, Outliers: []float64{}}, s)
}

func TestComputeBoxStatsEmpty(t *testing.T) {
	_, err := ComputeBoxStats(nil)
	assert.ErrorIs(t, err, ErrEmptyAggregate)
}

func TestComputeBoxStatsDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, err := ComputeBoxStats(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestFitTrend(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{3, 5, 7, 9}

	line, err := fitTrend("male", xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, line.Intercept, 1e-9)
	assert.InDelta(t, 2.0, line.Slope, 1e-9)
	assert.Equal(t, 1.0, line.XMin)
	assert.Equal(t, 4.0, line.XMax)

	_, err = fitTrend("female", []float64{5, 5}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrEmptyAggregate)

	_, err = fitTrend("female", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyAggregate)
}

func TestEqualWidthBins(t *testing.T) {
	bins, err := EqualWidthBins([]float64{70, 10, 40}, 6)
	require.NoError(t, err)
	require.Len(t, bins, 6)

	assert.InDelta(t, 9.94, bins[0].Lower, 1e-9)
	assert.Equal(t, "(9.94, 20]", bins[0].Label)
	assert.Equal(t, "(60, 70]", bins[5].Label)
	for i := 1; i < len(bins); i++ {
		assert.Equal(t, bins[i-1].Upper, bins[i].Lower, "bins are contiguous")
	}

	assert.Equal(t, 0, AssignBin(bins, 10), "minimum belongs to the first bin")
	assert.Equal(t, 5, AssignBin(bins, 70), "maximum belongs to the last bin")
	assert.Equal(t, -1, AssignBin(bins, 71))
	assert.Equal(t, -1, AssignBin(bins, 9))
}

func TestBinEdgeBelongsToExactlyOneBin(t *testing.T) {
	bins, err := EqualWidthBins([]float64{10, 70}, 6)
	require.NoError(t, err)

	for _, edge := range []float64{20, 30, 40, 50, 60} {
		holders := 0
		for _, b := range bins {
			if b.Contains(edge) {
				holders++
			}
		}
		assert.Equal(t, 1, holders, "edge %v", edge)

		i := AssignBin(bins, edge)
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, edge, bins[i].Upper, "edge %v goes to the bin it closes", edge)
	}
}

func TestEqualWidthBinsConstantInput(t *testing.T) {
	bins, err := EqualWidthBins([]float64{50, 50}, 6)
	require.NoError(t, err)
	assert.InDelta(t, 49.95, bins[0].Lower, 1e-9)
	assert.InDelta(t, 50.05, bins[5].Upper, 1e-9)
	assert.NotEqual(t, -1, AssignBin(bins, 50))

	zero, err := EqualWidthBins([]float64{0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "(-0.001, 0]", zero[0].Label)
	assert.Equal(t, 0, AssignBin(zero, 0))
}

func TestEqualWidthBinsErrors(t *testing.T) {
	_, err := EqualWidthBins(nil, 6)
	assert.ErrorIs(t, err, ErrEmptyAggregate)

	_, err = EqualWidthBins([]float64{1}, 0)
	assert.Error(t, err)
}
