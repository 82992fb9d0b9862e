package server

import (
	"html/template"
	"net/http"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/models"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"money": common.FormatMoney,
	"pct":   common.FormatPercent,
	"ratio": common.FormatRatio,
}).Parse(pageHTML))

type chartView struct {
	Title string
	Src   string
	Note  string // shown instead of the image when the chart has nothing to draw
}

type pageView struct {
	Version   string
	Segments  []segmentOption
	Dashboard *models.Dashboard
	Charts    []chartView
	Error     string
}

type segmentOption struct {
	Name    string
	Checked bool
}

// handlePage renders the dashboard for the segments in the query string.
// The form posts back with GET and always includes an empty segments value
// so that clearing every checkbox means "none" rather than "all".
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	ctx := r.Context()
	view := pageView{Version: common.GetVersion()}

	all, err := s.app.DashboardService.Segments(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	d, err := s.app.DashboardService.Dashboard(ctx, ParseSelection(r))
	if err != nil {
		status, _ = errorStatus(err)
		view.Error = err.Error()
	} else {
		view.Dashboard = d
		view.Charts = chartViews(d)
	}

	selected := make(map[string]bool)
	if d != nil {
		for _, seg := range d.Selection {
			selected[seg] = true
		}
	}
	for _, seg := range all {
		view.Segments = append(view.Segments, segmentOption{Name: seg, Checked: selected[seg]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render dashboard page")
	}
}

func chartViews(d *models.Dashboard) []chartView {
	q := SelectionQuery(d.Selection)

	views := make([]chartView, 0, len(models.ChartKinds))
	for _, kind := range models.ChartKinds {
		v := chartView{
			Title: kind.Title(),
			Src:   "/api/charts/" + string(kind) + ".png?" + q,
		}
		if note := emptyChartNote(kind, d); note != "" {
			v.Src, v.Note = "", note
		}
		views = append(views, v)
	}
	return views
}

// emptyChartNote mirrors the renderer's no-data rules so the page does not
// request an image that would fail.
func emptyChartNote(kind models.ChartKind, d *models.Dashboard) string {
	if d.RowCount == 0 {
		return "No rows in the current selection."
	}
	switch kind {
	case models.ChartRatio:
		for _, seg := range d.Segments {
			if seg.RatioDefined() {
				return ""
			}
		}
		return "Ratio undefined: every selected segment has zero profit."
	case models.ChartCategories:
		for _, c := range d.Categories {
			if c.ProfitSum > 0 {
				return ""
			}
		}
		return "No category is profitable in the current selection."
	}
	return ""
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Business Sales &amp; Profit Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
.kpis { display: flex; gap: 1rem; margin: 1rem 0; }
.kpi { border: 1px solid #ddd; border-radius: 6px; padding: 1rem 1.5rem; min-width: 12rem; }
.kpi .label { color: #666; font-size: 0.9rem; }
.kpi .value { font-size: 1.6rem; font-weight: bold; }
.error { color: #b00020; }
.charts { display: flex; flex-wrap: wrap; gap: 1rem; }
.chart { flex: 1 1 45%; }
table { border-collapse: collapse; margin: 1rem 0; }
td, th { border: 1px solid #ddd; padding: 0.3rem 0.8rem; text-align: right; }
td:first-child, th:first-child { text-align: left; }
</style>
</head>
<body>
<h1>Business Sales &amp; Profit Dashboard</h1>

<form method="get" action="/">
<input type="hidden" name="segments" value="">
<fieldset>
<legend>Segments</legend>
{{range .Segments}}<label><input type="checkbox" name="segments" value="{{.Name}}"{{if .Checked}} checked{{end}}> {{.Name}}</label>
{{end}}<button type="submit">Apply</button>
</fieldset>
</form>

{{if .Error}}<p class="error">{{.Error}}</p>{{end}}

{{with .Dashboard}}
<div class="kpis">
<div class="kpi"><div class="label">Total Sales</div><div class="value">{{money .KPIs.TotalSales}}</div></div>
<div class="kpi"><div class="label">Total Profit</div><div class="value">{{money .KPIs.TotalProfit}}</div></div>
<div class="kpi"><div class="label">Profit Margin</div><div class="value">{{pct .KPIs.ProfitMarginPct}}</div></div>
</div>

{{if .Segments}}
<table>
<tr><th>Segment</th><th>Sales</th><th>Profit</th><th>Sales/Profit</th></tr>
{{range .Segments}}<tr><td>{{.Segment}}</td><td>{{money .SalesSum}}</td><td>{{money .ProfitSum}}</td><td>{{ratio .SalesToProfitRatio}}</td></tr>
{{end}}</table>
{{end}}
{{end}}

<div class="charts">
{{range .Charts}}<div class="chart">
<h3>{{.Title}}</h3>
{{if .Src}}<img src="{{.Src}}" alt="{{.Title}}">{{else}}<p>{{.Note}}</p>{{end}}
</div>
{{end}}</div>

<p><a href="/api/download">Download Data</a></p>
<footer><small>salesdash {{.Version}}</small></footer>
</body>
</html>
`
