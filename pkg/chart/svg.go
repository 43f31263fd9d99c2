package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Default canvas size of a single chart
const (
	DefaultWidth  = 7 * vg.Inch
	DefaultHeight = 4.5 * vg.Inch
)

// ErrNoData is returned when a chart has nothing to draw
var ErrNoData = errors.New("chart has no data")

// SVG renders the grouped bar chart. Combinations absent from Bars are drawn
// with zero height so bars stay aligned with their category.
func (c BarChart) SVG() ([]byte, error) {
	if len(c.Categories) == 0 || len(c.Groups) == 0 {
		return nil, ErrNoData
	}

	counts := make(map[[2]string]int, len(c.Bars))
	for _, b := range c.Bars {
		counts[[2]string{b.X, b.Group}] = b.Count
	}

	p := newPlot(c.Title, c.XLabel, c.YLabel)
	p.Legend.Top = true
	p.Legend.Left = false

	n := len(c.Groups)
	barWidth := vg.Points(math.Max(3, 48/float64(n)))
	for i, group := range c.Groups {
		values := make(plotter.Values, len(c.Categories))
		for j, x := range c.Categories {
			values[j] = float64(counts[[2]string{x, group}])
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to build bars for %s: %w", group, err)
		}
		bars.Color = GroupColor(group, i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth

		p.Add(bars)
		p.Legend.Add(group, bars)
	}
	p.NominalX(c.Categories...)

	width := DefaultWidth
	if need := vg.Length(len(c.Categories)*n)*barWidth + 2*vg.Inch; need > width {
		width = need
	}
	return writeSVG(p, width, DefaultHeight)
}

// SVG renders the scatter plot with one trend line per group
func (c ScatterChart) SVG() ([]byte, error) {
	if len(c.Points) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(c.Title, c.XLabel, c.YLabel)
	p.Add(plotter.NewGrid())

	for i, group := range c.Groups {
		var xys plotter.XYs
		for _, pt := range c.Points {
			if pt.Group == group {
				xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
			}
		}
		if len(xys) == 0 {
			continue
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build scatter for %s: %w", group, err)
		}
		col := GroupColor(group, i)
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(group, scatter)

		for _, trend := range c.Trends {
			if trend.Group != group {
				continue
			}
			line := plotter.NewFunction(trend.At)
			line.XMin = trend.XMin
			line.XMax = trend.XMax
			line.Samples = 2
			line.LineStyle.Color = col
			line.LineStyle.Width = vg.Points(2)
			p.Add(line)
		}
	}

	return writeSVG(p, DefaultWidth, DefaultHeight)
}

// SVG renders one box per group
func (c BoxChart) SVG() ([]byte, error) {
	p, err := c.plot()
	if err != nil {
		return nil, err
	}
	return writeSVG(p, DefaultWidth, DefaultHeight)
}

func (c BoxChart) plot() (*plot.Plot, error) {
	if len(c.Boxes) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(c.Title, c.XLabel, c.YLabel)
	names := make([]string, len(c.Boxes))
	for i, box := range c.Boxes {
		b, err := newBoxPlot(box, float64(i), GroupColor(box.Group, i))
		if err != nil {
			return nil, fmt.Errorf("failed to build box for %s: %w", box.Group, err)
		}
		b.Horizontal = c.Horizontal
		p.Add(b)
		names[i] = box.Group
	}
	if c.Horizontal {
		p.NominalY(names...)
	} else {
		p.NominalX(names...)
	}
	return p, nil
}

// newBoxPlot draws precomputed statistics. plotter computes its own
// quartiles, so they are replaced by the ones in box.
func newBoxPlot(box Box, loc float64, fill color.Color) (*plotter.BoxPlot, error) {
	s := box.Stats
	if s.N == 0 {
		return nil, ErrNoData
	}

	values := plotter.Values{s.Min, s.Q1, s.Median, s.Q3, s.Max}
	values = append(values, s.Outliers...)

	b, err := plotter.NewBoxPlot(vg.Points(40), loc, values)
	if err != nil {
		return nil, err
	}

	b.Median = s.Median
	b.Quartile1 = s.Q1
	b.Quartile3 = s.Q3
	b.AdjLow = s.Min
	b.AdjHigh = s.Max
	b.Min, b.Max = s.Min, s.Max
	b.Outside = b.Outside[:0]
	for i, v := range s.Outliers {
		b.Outside = append(b.Outside, 5+i)
		b.Min = math.Min(b.Min, v)
		b.Max = math.Max(b.Max, v)
	}
	b.FillColor = fill
	return b, nil
}

// SVG renders every facet as a box chart tiled Columns per row
func (g FacetGrid) SVG() ([]byte, error) {
	if len(g.Facets) == 0 {
		return nil, ErrNoData
	}

	cols := g.Columns
	if cols <= 0 {
		cols = 2
	}
	rows := (len(g.Facets) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for c := range plots[r] {
			i := r*cols + c
			if i >= len(g.Facets) {
				empty := plot.New()
				empty.HideAxes()
				plots[r][c] = empty
				continue
			}

			facet := g.Facets[i]
			panel := facet.Chart
			if panel.Title == "" {
				panel.Title = facet.Label
			}
			if len(panel.Boxes) == 0 {
				plots[r][c] = newPlot(panel.Title, panel.XLabel, panel.YLabel)
				continue
			}
			p, err := panel.plot()
			if err != nil {
				return nil, fmt.Errorf("failed to build facet %s: %w", facet.Label, err)
			}
			plots[r][c] = p
		}
	}

	width := DefaultWidth
	height := vg.Length(rows) * 3 * vg.Inch
	img := vgsvg.New(width, height+0.5*vg.Inch)
	dc := draw.New(img)

	if g.Title != "" {
		titleFont := plot.DefaultFont
		titleFont.Size = vg.Points(14)
		dc.FillText(draw.TextStyle{
			Color:   color.Black,
			Font:    titleFont,
			Handler: plot.DefaultTextHandler,
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
		}, vg.Point{X: width / 2, Y: dc.Max.Y}, g.Title)
		dc.Max.Y -= 0.5 * vg.Inch
	}

	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write facet grid: %w", err)
	}
	return buf.Bytes(), nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func writeSVG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	w, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return nil, fmt.Errorf("failed to create svg writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render svg: %w", err)
	}
	return buf.Bytes(), nil
}
