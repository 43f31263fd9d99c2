// Package chart holds framework-agnostic chart specifications and renders
// them to SVG. Specifications are plain data and serialize to JSON.
package chart

// Spec is a chart that can be rendered
type Spec interface {
	SVG() ([]byte, error)
}

// Bar is one bar of a grouped bar chart
type Bar struct {
	X     string `json:"x"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// BarChart is a grouped bar chart. Bars lists only observed combinations;
// Categories and Groups fix the axis and legend order.
type BarChart struct {
	Title      string   `json:"title"`
	XLabel     string   `json:"x_label"`
	YLabel     string   `json:"y_label"`
	GroupLabel string   `json:"group_label"`
	Categories []string `json:"categories"`
	Groups     []string `json:"groups"`
	Bars       []Bar    `json:"bars"`
}

// Total returns the sum of all bar counts
func (c BarChart) Total() int {
	total := 0
	for _, b := range c.Bars {
		total += b.Count
	}
	return total
}

// Point is one scatter point. Hover carries extra values shown on inspection.
type Point struct {
	X     float64            `json:"x"`
	Y     float64            `json:"y"`
	Group string             `json:"group"`
	Hover map[string]float64 `json:"hover,omitempty"`
}

// TrendLine is a least-squares fit y = Intercept + Slope*x drawn over [XMin, XMax]
type TrendLine struct {
	Group     string  `json:"group"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	XMin      float64 `json:"x_min"`
	XMax      float64 `json:"x_max"`
}

// At evaluates the line at x
func (t TrendLine) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// ScatterChart is a scatter plot coloured by group with one trend line per group
type ScatterChart struct {
	Title  string      `json:"title"`
	XLabel string      `json:"x_label"`
	YLabel string      `json:"y_label"`
	Groups []string    `json:"groups"`
	Points []Point     `json:"points"`
	Trends []TrendLine `json:"trends"`
}

// BoxStats summarizes a distribution. Min and Max are the whisker ends, the
// most extreme values inside the fences; values beyond the fences are Outliers.
type BoxStats struct {
	N          int       `json:"n"`
	Min        float64   `json:"min"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	Max        float64   `json:"max"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []float64 `json:"outliers"`
}

// IQR returns the interquartile range
func (s BoxStats) IQR() float64 {
	return s.Q3 - s.Q1
}

// Box is the distribution of one group
type Box struct {
	Group string   `json:"group"`
	Stats BoxStats `json:"stats"`
}

// BoxChart draws one box per group. Horizontal boxes put the groups on the
// y axis and the values on the x axis.
type BoxChart struct {
	Title      string `json:"title"`
	XLabel     string `json:"x_label"`
	YLabel     string `json:"y_label"`
	Horizontal bool   `json:"horizontal"`
	Boxes      []Box  `json:"boxes"`
}

// Facet is one panel of a FacetGrid covering the interval (Lower, Upper]
type Facet struct {
	Label string   `json:"label"`
	Lower float64  `json:"lower"`
	Upper float64  `json:"upper"`
	Chart BoxChart `json:"chart"`
}

// FacetGrid tiles box charts, Columns per row
type FacetGrid struct {
	Title   string  `json:"title"`
	Columns int     `json:"columns"`
	Facets  []Facet `json:"facets"`
}
