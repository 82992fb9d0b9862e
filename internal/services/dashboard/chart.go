package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/salesdash/internal/models"
)

// ErrNoChartData is returned when a chart has nothing drawable, e.g. every
// segment ratio is non-finite or no category has positive profit.
var ErrNoChartData = errors.New("no chartable data")

// ChartSize is the rendered image size in pixels.
type ChartSize struct {
	Width  int
	Height int
}

var (
	salesColor  = drawing.ColorFromHex("76c7c0")
	profitColor = drawing.ColorFromHex("e0b656")

	pastel = []drawing.Color{
		drawing.ColorFromHex("66c5cc"),
		drawing.ColorFromHex("f6cf71"),
		drawing.ColorFromHex("f89c74"),
		drawing.ColorFromHex("dcb0f2"),
		drawing.ColorFromHex("87c55f"),
		drawing.ColorFromHex("9eb9f3"),
		drawing.ColorFromHex("fe88b1"),
		drawing.ColorFromHex("c9db74"),
		drawing.ColorFromHex("8be0a4"),
		drawing.ColorFromHex("b497e7"),
		drawing.ColorFromHex("b3b3b3"),
	}
)

func pastelAt(i int) drawing.Color {
	return pastel[i%len(pastel)]
}

// RenderChart renders the named chart for a computed dashboard as PNG bytes.
func RenderChart(kind models.ChartKind, d *models.Dashboard, size ChartSize) ([]byte, error) {
	switch kind {
	case models.ChartSegments:
		return RenderSegmentChart(d.SegmentsLong, size)
	case models.ChartRatio:
		return RenderRatioChart(d.Segments, size)
	case models.ChartCategories:
		return RenderCategoryChart(d.Categories, size)
	default:
		return nil, fmt.Errorf("unknown chart %q", kind)
	}
}

// RenderSegmentChart draws sales and profit side by side for each segment.
// Negative profit bars hang below the zero line.
func RenderSegmentChart(rows []models.MeltedRow, size ChartSize) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoChartData
	}

	// Long form lists every Sales row before every Profit row; interleave
	// them so each segment's pair sits together.
	half := len(rows) / 2
	bars := make([]chart.Value, 0, len(rows))
	for i := 0; i < half; i++ {
		sales, profit := rows[i], rows[i+half]
		bars = append(bars,
			chart.Value{
				Label: sales.Segment + " " + sales.Variable,
				Value: sales.Value,
				Style: chart.Style{FillColor: salesColor, StrokeColor: salesColor},
			},
			chart.Value{
				Label: profit.Segment + " " + profit.Variable,
				Value: profit.Value,
				Style: chart.Style{FillColor: profitColor, StrokeColor: profitColor},
			},
		)
	}

	return renderBars(models.ChartSegments.Title(), bars, size, moneyFormatter)
}

// RenderRatioChart draws the sales-to-profit ratio for each segment whose
// ratio is finite. Segments with a zero profit sum are left out.
func RenderRatioChart(aggs []models.SegmentAggregate, size ChartSize) ([]byte, error) {
	bars := make([]chart.Value, 0, len(aggs))
	for i, a := range aggs {
		if !a.RatioDefined() {
			continue
		}
		c := pastelAt(i)
		bars = append(bars, chart.Value{
			Label: a.Segment,
			Value: a.SalesToProfitRatio,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoChartData
	}

	return renderBars(models.ChartRatio.Title(), bars, size, func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.1f", f)
		}
		return ""
	})
}

// RenderCategoryChart draws the profit share pie. A pie cannot show negative
// or zero slices, so only categories with positive profit are drawn.
func RenderCategoryChart(aggs []models.CategoryAggregate, size ChartSize) ([]byte, error) {
	values := make([]chart.Value, 0, len(aggs))
	for i, a := range aggs {
		if a.ProfitSum <= 0 {
			continue
		}
		c := pastelAt(i)
		values = append(values, chart.Value{
			Label: a.Category,
			Value: a.ProfitSum,
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoChartData
	}

	graph := chart.PieChart{
		Title:  models.ChartCategories.Title(),
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBars(title string, bars []chart.Value, size ChartSize, yFormat chart.ValueFormatter) ([]byte, error) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if lo == hi {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth:     48,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: yFormat,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func moneyFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		if math.Abs(f) >= 1000 {
			return fmt.Sprintf("$%.1fk", f/1000)
		}
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}
