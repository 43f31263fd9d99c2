// Package report derives the dashboard's summary table and charts from the
// cleaned survey table. Everything here is a pure function of the table.
package report

import (
	"fmt"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
	"github.com/David-Botos/gss-dashboard/pkg/model"
)

// FacetBins is the number of job prestige groups in the faceted income chart
const FacetBins = 6

// Axis labels and titles shown on the dashboard
const (
	LabelBreadwinner = "Level of agreement to male_breadwinner"
	LabelCount       = "Number of people"
	LabelPrestige    = "Occupational Prestige Score"
	LabelIncome      = "Income"
	LabelAnnual      = "Annual Income"
)

// SummaryColumns are the display titles of the summary table
var SummaryColumns = []string{
	"Gender",
	"Avg. income",
	"Avg. job_prestige",
	"Avg. socioeconomic_index",
	"Avg. education",
}

// SummaryRow holds per-sex means rounded to two decimals. A nil mean has no
// non-missing input in that group.
type SummaryRow struct {
	Sex                string   `json:"sex"`
	Income             *float64 `json:"income"`
	JobPrestige        *float64 `json:"job_prestige"`
	SocioeconomicIndex *float64 `json:"socioeconomic_index"`
	Education          *float64 `json:"education"`
}

// Report bundles every static aggregate and chart of the dashboard
type Report struct {
	LoadID            string             `json:"load_id"`
	Rows              int                `json:"rows"`
	Summary           []SummaryRow       `json:"summary"`
	BreadwinnerCounts []GroupCount       `json:"breadwinner_counts"`
	Breadwinner       chart.BarChart     `json:"breadwinner"`
	Scatter           chart.ScatterChart `json:"scatter"`
	IncomeBySex       chart.BoxChart     `json:"income_by_sex"`
	PrestigeBySex     chart.BoxChart     `json:"prestige_by_sex"`
	PrestigeBins      []Bin              `json:"prestige_bins"`
	FacetedIncome     chart.FacetGrid    `json:"faceted_income"`
}

// BuildReport computes every static aggregate. Any aggregate without input
// fails the build with ErrEmptyAggregate.
func BuildReport(table *model.Table) (*Report, error) {
	r := &Report{LoadID: table.LoadID(), Rows: table.Len()}

	summary, err := Summarize(table)
	if err == nil {
		err = checkSummary(summary)
	}
	if err != nil {
		return nil, fmt.Errorf("summary table: %w", err)
	}
	r.Summary = summary

	counts, err := CountBy(table, model.ColMaleBreadwinner, model.ColSex)
	if err != nil {
		return nil, fmt.Errorf("breadwinner counts: %w", err)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("breadwinner counts: %w", ErrEmptyAggregate)
	}
	r.BreadwinnerCounts = counts
	r.Breadwinner = barChart("", LabelBreadwinner, LabelCount, model.ColSex, counts)

	if r.Scatter, err = Scatter(table); err != nil {
		return nil, fmt.Errorf("prestige scatter: %w", err)
	}

	if r.IncomeBySex, err = BoxBySex(table, model.ColIncome, LabelAnnual); err != nil {
		return nil, fmt.Errorf("income box plot: %w", err)
	}
	if r.PrestigeBySex, err = BoxBySex(table, model.ColJobPrestige, LabelPrestige); err != nil {
		return nil, fmt.Errorf("prestige box plot: %w", err)
	}

	if r.FacetedIncome, r.PrestigeBins, err = FacetedIncome(table, FacetBins); err != nil {
		return nil, fmt.Errorf("faceted income: %w", err)
	}
	return r, nil
}

var summaryFields = []string{
	model.ColIncome,
	model.ColJobPrestige,
	model.ColSocioeconomicIndex,
	model.ColEducation,
}

// Summarize averages income, job prestige, socioeconomic index and education
// per sex, in the order sexes first appear. Missing values are left out of
// each mean.
func Summarize(table *model.Table) ([]SummaryRow, error) {
	order := sexOrder(table)
	if len(order) == 0 {
		return nil, fmt.Errorf("no records with sex: %w", ErrEmptyAggregate)
	}

	values := make(map[string]map[string][]float64, len(order))
	for _, sex := range order {
		values[sex] = make(map[string][]float64, len(summaryFields))
	}

	table.Each(func(_ int, r model.Record) {
		if !r.Sex.Valid {
			return
		}
		for _, field := range summaryFields {
			if v, _ := r.Numeric(field); v.Valid {
				values[r.Sex.String][field] = append(values[r.Sex.String][field], v.Float64)
			}
		}
	})

	rows := make([]SummaryRow, len(order))
	for i, sex := range order {
		rows[i] = SummaryRow{
			Sex:                sex,
			Income:             roundedMean(values[sex][model.ColIncome]),
			JobPrestige:        roundedMean(values[sex][model.ColJobPrestige]),
			SocioeconomicIndex: roundedMean(values[sex][model.ColSocioeconomicIndex]),
			Education:          roundedMean(values[sex][model.ColEducation]),
		}
	}
	return rows, nil
}

// checkSummary fails when a column has no mean in any row
func checkSummary(rows []SummaryRow) error {
	for i, field := range summaryFields {
		found := false
		for _, row := range rows {
			if row.means()[i] != nil {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("mean of %s: %w", field, ErrEmptyAggregate)
		}
	}
	return nil
}

// means returns the row's means in summaryFields order
func (r SummaryRow) means() []*float64 {
	return []*float64{r.Income, r.JobPrestige, r.SocioeconomicIndex, r.Education}
}

func roundedMean(values []float64) *float64 {
	m, ok := mean(values)
	if !ok {
		return nil
	}
	m = round2(m)
	return &m
}

// Scatter plots income against job prestige per sex with a least-squares
// trend line for each sex
func Scatter(table *model.Table) (chart.ScatterChart, error) {
	c := chart.ScatterChart{
		XLabel: LabelPrestige,
		YLabel: LabelIncome,
		Groups: []string{},
		Points: []chart.Point{},
		Trends: []chart.TrendLine{},
	}

	xs := make(map[string][]float64)
	ys := make(map[string][]float64)
	table.Each(func(_ int, r model.Record) {
		if !r.Sex.Valid || !r.JobPrestige.Valid || !r.Income.Valid {
			return
		}
		sex := r.Sex.String
		if _, seen := xs[sex]; !seen {
			c.Groups = append(c.Groups, sex)
		}

		pt := chart.Point{X: r.JobPrestige.Float64, Y: r.Income.Float64, Group: sex}
		if r.Education.Valid || r.SocioeconomicIndex.Valid {
			pt.Hover = make(map[string]float64, 2)
			if r.Education.Valid {
				pt.Hover[model.ColEducation] = r.Education.Float64
			}
			if r.SocioeconomicIndex.Valid {
				pt.Hover[model.ColSocioeconomicIndex] = r.SocioeconomicIndex.Float64
			}
		}
		c.Points = append(c.Points, pt)
		xs[sex] = append(xs[sex], pt.X)
		ys[sex] = append(ys[sex], pt.Y)
	})

	if len(c.Points) == 0 {
		return c, ErrEmptyAggregate
	}
	for _, sex := range c.Groups {
		trend, err := fitTrend(sex, xs[sex], ys[sex])
		if err != nil {
			return c, err
		}
		c.Trends = append(c.Trends, trend)
	}
	return c, nil
}

// BoxBySex summarizes a numeric column per sex as horizontal boxes
func BoxBySex(table *model.Table, column, label string) (chart.BoxChart, error) {
	c := chart.BoxChart{XLabel: label, Horizontal: true}

	var order []string
	values := make(map[string][]float64)
	table.Each(func(_ int, r model.Record) {
		v, ok := r.Numeric(column)
		if !ok || !v.Valid || !r.Sex.Valid {
			return
		}
		if _, seen := values[r.Sex.String]; !seen {
			order = append(order, r.Sex.String)
		}
		values[r.Sex.String] = append(values[r.Sex.String], v.Float64)
	})

	if len(order) == 0 {
		return c, fmt.Errorf("%s: %w", column, ErrEmptyAggregate)
	}
	for _, sex := range order {
		stats, err := ComputeBoxStats(values[sex])
		if err != nil {
			return c, err
		}
		c.Boxes = append(c.Boxes, chart.Box{Group: sex, Stats: stats})
	}
	return c, nil
}

// FacetedIncome drops records missing job prestige, income or sex, splits
// job prestige into bins equal-width bins and summarizes income per sex
// within each bin
func FacetedIncome(table *model.Table, bins int) (chart.FacetGrid, []Bin, error) {
	grid := chart.FacetGrid{Columns: 2}

	var kept []model.Record
	var prestige []float64
	table.Each(func(_ int, r model.Record) {
		if r.JobPrestige.Valid && r.Income.Valid && r.Sex.Valid {
			kept = append(kept, r)
			prestige = append(prestige, r.JobPrestige.Float64)
		}
	})

	edges, err := EqualWidthBins(prestige, bins)
	if err != nil {
		return grid, nil, err
	}

	var order []string
	seen := make(map[string]bool)
	incomes := make([]map[string][]float64, len(edges))
	for i := range incomes {
		incomes[i] = make(map[string][]float64)
	}
	for _, r := range kept {
		sex := r.Sex.String
		if !seen[sex] {
			seen[sex] = true
			order = append(order, sex)
		}
		i := AssignBin(edges, r.JobPrestige.Float64)
		if i < 0 {
			return grid, nil, fmt.Errorf("job prestige %v falls outside every bin", r.JobPrestige.Float64)
		}
		incomes[i][sex] = append(incomes[i][sex], r.Income.Float64)
	}

	for i, bin := range edges {
		panel := chart.BoxChart{
			Title:      model.ColJobPrestige + " " + bin.Label,
			XLabel:     LabelAnnual,
			Horizontal: true,
		}
		for _, sex := range order {
			if len(incomes[i][sex]) == 0 {
				continue
			}
			stats, err := ComputeBoxStats(incomes[i][sex])
			if err != nil {
				return grid, nil, err
			}
			panel.Boxes = append(panel.Boxes, chart.Box{Group: sex, Stats: stats})
		}
		grid.Facets = append(grid.Facets, chart.Facet{
			Label: bin.Label,
			Lower: bin.Lower,
			Upper: bin.Upper,
			Chart: panel,
		})
	}
	return grid, edges, nil
}

// sexOrder lists the sex levels in the order they first appear
func sexOrder(table *model.Table) []string {
	var order []string
	seen := make(map[string]bool)
	table.Each(func(_ int, r model.Record) {
		if r.Sex.Valid && !seen[r.Sex.String] {
			seen[r.Sex.String] = true
			order = append(order, r.Sex.String)
		}
	})
	return order
}
