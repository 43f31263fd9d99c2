package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
)

// BoxStats is the box-plot summary of a distribution
type BoxStats = chart.BoxStats

// whiskerFactor scales the interquartile range into the outlier fences
const whiskerFactor = 1.5

// ComputeBoxStats summarizes values. Quartiles interpolate linearly between
// order statistics at position p*(n-1) (Hyndman-Fan type 7).
func ComputeBoxStats(values []float64) (BoxStats, error) {
	if len(values) == 0 {
		return BoxStats{}, ErrEmptyAggregate
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := BoxStats{
		N:      len(sorted),
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := s.Q3 - s.Q1
	s.LowerFence = s.Q1 - whiskerFactor*iqr
	s.UpperFence = s.Q3 + whiskerFactor*iqr

	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	s.Outliers = []float64{}
	for _, v := range sorted {
		if v < s.LowerFence || v > s.UpperFence {
			s.Outliers = append(s.Outliers, v)
			continue
		}
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s, nil
}

// quantile interpolates the p-quantile of sorted, which must be non-empty
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// mean returns the arithmetic mean, false when values is empty
func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// round2 rounds half away from zero to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fitTrend fits y = a + b*x by ordinary least squares. At least two distinct
// x values are required.
func fitTrend(group string, xs, ys []float64) (chart.TrendLine, error) {
	if len(xs) == 0 {
		return chart.TrendLine{}, fmt.Errorf("trend for %s: %w", group, ErrEmptyAggregate)
	}

	xMin, xMax := xs[0], xs[0]
	for _, x := range xs[1:] {
		xMin = math.Min(xMin, x)
		xMax = math.Max(xMax, x)
	}
	if xMin == xMax {
		return chart.TrendLine{}, fmt.Errorf("trend for %s needs two distinct x values: %w", group, ErrEmptyAggregate)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return chart.TrendLine{
		Group:     group,
		Intercept: alpha,
		Slope:     beta,
		XMin:      xMin,
		XMax:      xMax,
	}, nil
}
