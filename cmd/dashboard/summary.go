package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

// printSummary writes the summary table and breadwinner counts as text tables
func printSummary(w io.Writer, state *pipeline.State) {
	fmt.Fprintf(w, "%s respondents (load %s)\n\n", humanize.Comma(int64(state.Report.Rows)), state.Report.LoadID)

	table := tablewriter.NewWriter(w)
	table.SetHeader(report.SummaryColumns)
	for _, row := range state.Report.Summary {
		table.Append([]string{
			row.Sex,
			formatMean(row.Income),
			formatMean(row.JobPrestige),
			formatMean(row.SocioeconomicIndex),
			formatMean(row.Education),
		})
	}
	table.Render()

	fmt.Fprintln(w)

	counts := tablewriter.NewWriter(w)
	counts.SetHeader([]string{model.ColMaleBreadwinner, model.ColSex, "Count"})
	for _, c := range state.Report.BreadwinnerCounts {
		counts.Append([]string{c.X, c.Group, strconv.Itoa(c.Count)})
	}
	counts.Render()
}

func formatMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return humanize.CommafWithDigits(*v, 2)
}
