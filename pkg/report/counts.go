package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
	"github.com/David-Botos/gss-dashboard/pkg/model"
)

var (
	// ErrEmptyAggregate is returned when an aggregate has no input values
	ErrEmptyAggregate = errors.New("aggregate has no non-missing values")
	// ErrInvalidSelection is returned when a chart is requested for a column
	// outside its option set
	ErrInvalidSelection = errors.New("invalid column selection")
)

// Options of the explore chart, in display order
var (
	XFields = []string{
		model.ColSatJob,
		model.ColRelationship,
		model.ColMaleBreadwinner,
		model.ColMenBetterSuited,
		model.ColChildSuffer,
		model.ColMenOverwork,
	}
	GroupFields = []string{
		model.ColSex,
		model.ColRegion,
		model.ColEducation,
	}
)

// Default selections of the explore chart
const (
	DefaultXField     = model.ColSatJob
	DefaultGroupField = model.ColSex
)

// GroupCount is the number of records with a given pair of levels
type GroupCount struct {
	X     string `json:"x"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// CountBy counts records by the levels of columns x and group. Records
// missing either level are skipped and unobserved pairs are omitted. Rows
// are ordered by x then group.
func CountBy(table *model.Table, x, group string) ([]GroupCount, error) {
	if err := checkGroupable(x); err != nil {
		return nil, err
	}
	if err := checkGroupable(group); err != nil {
		return nil, err
	}

	counts := make(map[[2]string]int)
	table.Each(func(_ int, r model.Record) {
		xv, _ := r.Category(x)
		gv, _ := r.Category(group)
		if xv.Valid && gv.Valid {
			counts[[2]string{xv.String, gv.String}]++
		}
	})

	rows := make([]GroupCount, 0, len(counts))
	for key, n := range counts {
		rows = append(rows, GroupCount{X: key[0], Group: key[1], Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].X != rows[j].X {
			return levelLess(rows[i].X, rows[j].X)
		}
		return levelLess(rows[i].Group, rows[j].Group)
	})
	return rows, nil
}

// Regroup builds the explore chart for an x field and a group field taken
// from XFields and GroupFields
func Regroup(table *model.Table, x, group string) (chart.BarChart, error) {
	if !contains(XFields, x) {
		return chart.BarChart{}, fmt.Errorf("%w: x field %q", ErrInvalidSelection, x)
	}
	if !contains(GroupFields, group) {
		return chart.BarChart{}, fmt.Errorf("%w: group field %q", ErrInvalidSelection, group)
	}

	counts, err := CountBy(table, x, group)
	if err != nil {
		return chart.BarChart{}, err
	}
	return barChart("", x, "count", group, counts), nil
}

// barChart lays out counts as a grouped bar chart
func barChart(title, xLabel, yLabel, groupLabel string, counts []GroupCount) chart.BarChart {
	c := chart.BarChart{
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		GroupLabel: groupLabel,
		Categories: []string{},
		Groups:     []string{},
		Bars:       make([]chart.Bar, len(counts)),
	}

	seenX := make(map[string]bool)
	seenGroup := make(map[string]bool)
	for i, gc := range counts {
		c.Bars[i] = chart.Bar{X: gc.X, Group: gc.Group, Count: gc.Count}
		if !seenX[gc.X] {
			seenX[gc.X] = true
			c.Categories = append(c.Categories, gc.X)
		}
		if !seenGroup[gc.Group] {
			seenGroup[gc.Group] = true
			c.Groups = append(c.Groups, gc.Group)
		}
	}
	sort.Slice(c.Groups, func(i, j int) bool { return levelLess(c.Groups[i], c.Groups[j]) })
	return c
}

func checkGroupable(name string) error {
	col := model.GetColumnByName(name)
	if col == nil || col.Name != name || !col.IsGroupable() {
		return fmt.Errorf("%w: %q is not a groupable column", ErrInvalidSelection, name)
	}
	return nil
}

// levelLess orders numeric levels by value and everything else as text.
// Labels of equal value ("12", "12.0") fall back to text order.
func levelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
