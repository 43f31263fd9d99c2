package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Bin is the right-closed interval (Lower, Upper]
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Label string  `json:"label"`
}

// Contains reports whether v lies in the bin
func (b Bin) Contains(v float64) bool {
	return v > b.Lower && v <= b.Upper
}

// binEdgeAdjust widens the range so the minimum falls inside the first bin
const binEdgeAdjust = 0.001

// EqualWidthBins splits the observed range of values into n equal-width
// right-closed bins. The lowest edge is lowered by 0.1% of the range so the
// minimum is included; a constant input is widened by 0.1% on both sides.
func EqualWidthBins(values []float64, n int) ([]Bin, error) {
	if n < 1 {
		return nil, fmt.Errorf("bin count must be positive, got %d", n)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("binning: %w", ErrEmptyAggregate)
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	edges := make([]float64, n+1)
	if lo == hi {
		adj := binEdgeAdjust * math.Abs(lo)
		if lo == 0 {
			adj = binEdgeAdjust
		}
		lo, hi = lo-adj, hi+adj
		linspace(edges, lo, hi)
	} else {
		linspace(edges, lo, hi)
		edges[0] -= (hi - lo) * binEdgeAdjust
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{
			Lower: edges[i],
			Upper: edges[i+1],
			Label: fmt.Sprintf("(%s, %s]", formatEdge(edges[i]), formatEdge(edges[i+1])),
		}
	}
	return bins, nil
}

// linspace fills edges with evenly spaced values from lo to hi inclusive
func linspace(edges []float64, lo, hi float64) {
	steps := float64(len(edges) - 1)
	for i := range edges {
		edges[i] = lo + (hi-lo)*float64(i)/steps
	}
	edges[len(edges)-1] = hi
}

// AssignBin returns the index of the bin holding v, or -1 when v is outside
// every bin. A value on a shared edge belongs to the lower bin.
func AssignBin(bins []Bin, v float64) int {
	i := sort.Search(len(bins), func(i int) bool { return bins[i].Upper >= v })
	if i == len(bins) || !bins[i].Contains(v) {
		return -1
	}
	return i
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
