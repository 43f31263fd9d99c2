package server

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

//go:embed intro.md
var introMarkdown string

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// section is one static chart on the page
type section struct {
	Heading string
	Sub     bool
	Chart   string
}

var staticSections = []section{
	{Heading: "The number of men and women who respond with each level of agreement to 'male_breadwinner'", Chart: pipeline.ChartBreadwinner},
	{Heading: "Income vs. Prestige by Gender", Chart: pipeline.ChartScatter},
	{Heading: "Distribution of Income for Men and Women", Sub: true, Chart: pipeline.ChartIncomeBox},
	{Heading: "Distribution of Prestige for Men and Women", Sub: true, Chart: pipeline.ChartPrestigeBox},
	{Heading: "Distribution of Income for Men and Women for each category of Occupational Prestige", Chart: pipeline.ChartIncomeFacets},
}

type pageData struct {
	Intro       template.HTML
	LoadID      string
	Rows        int
	Columns     []string
	Summary     []report.SummaryRow
	Sections    []section
	XFields     []string
	GroupFields []string
	X           string
	Group       string
}

var pageFuncs = template.FuncMap{
	"mean": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return humanize.CommafWithDigits(*v, 2)
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GSS Gender Wage Gap</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 960px; color: #222; }
  table { border-collapse: collapse; margin: 1rem 0; }
  th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f3f3f3; }
  img.chart { width: 100%; height: auto; }
  .controls { display: flex; gap: 2rem; }
  .meta { color: #777; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Exploring the GSS Data to Discuss Gender Wage Gap</h1>
{{.Intro}}

<h2>Comparing Men and Women for the mean income, occupational prestige, socioeconomic index, and years of education</h2>
<table>
  <thead>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
  {{- range .Summary}}
    <tr><td>{{.Sex}}</td><td>{{mean .Income}}</td><td>{{mean .JobPrestige}}</td><td>{{mean .SocioeconomicIndex}}</td><td>{{mean .Education}}</td></tr>
  {{- end}}
  </tbody>
</table>

{{range .Sections}}
{{if .Sub}}<h3>{{.Heading}}</h3>{{else}}<h2>{{.Heading}}</h2>{{end}}
<img class="chart" src="/charts/{{.Chart}}.svg" alt="{{.Heading}}">
{{end}}

<h2>Creating Barplot</h2>
<form id="explore" method="get" action="/">
  <div class="controls">
    <div>
      <h3>x-axis feature</h3>
      <select name="x" id="x-field">
      {{- range .XFields}}
        <option value="{{.}}"{{if eq . $.X}} selected{{end}}>{{.}}</option>
      {{- end}}
      </select>
    </div>
    <div>
      <h3>groupby feature</h3>
      <select name="group" id="group-field">
      {{- range .GroupFields}}
        <option value="{{.}}"{{if eq . $.Group}} selected{{end}}>{{.}}</option>
      {{- end}}
      </select>
    </div>
  </div>
  <noscript><button type="submit">Update</button></noscript>
</form>
<img class="chart" id="explore-chart" src="/charts/explore.svg?x={{.X}}&group={{.Group}}" alt="Grouped counts">

<p class="meta">{{comma .Rows}} respondents, load {{.LoadID}}</p>

<script>
(function () {
  var form = document.getElementById("explore");
  var chart = document.getElementById("explore-chart");
  form.addEventListener("change", function () {
    var query = new URLSearchParams(new FormData(form)).toString();
    chart.src = "/charts/explore.svg?" + query;
    history.replaceState(null, "", "/?" + query);
  });
})();
</script>
</body>
</html>
`
