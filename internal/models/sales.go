// Package models defines data structures for salesdash
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Record is one sales transaction row. Columns the dashboard does not
// consume stay in the raw dataset rows for export only.
type Record struct {
	Segment  string  `json:"segment"`
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
}

// KPISummary holds the three headline metrics for a filtered view.
type KPISummary struct {
	TotalSales      float64 `json:"total_sales"`
	TotalProfit     float64 `json:"total_profit"`
	ProfitMarginPct float64 `json:"profit_margin_pct"` // 0 when TotalSales is 0
}

// SegmentAggregate is the per-segment sales and profit rollup.
//
// SalesToProfitRatio is SalesSum/ProfitSum with no zero guard: a segment whose
// profit sums to exactly zero carries +Inf, -Inf or NaN. Use RatioDefined
// before charting or formatting it.
type SegmentAggregate struct {
	Segment            string  `json:"segment"`
	SalesSum           float64 `json:"sales_sum"`
	ProfitSum          float64 `json:"profit_sum"`
	SalesToProfitRatio float64 `json:"sales_to_profit_ratio"`
}

// RatioDefined reports whether SalesToProfitRatio is a finite number.
func (a SegmentAggregate) RatioDefined() bool {
	return !math.IsInf(a.SalesToProfitRatio, 0) && !math.IsNaN(a.SalesToProfitRatio)
}

// MarshalJSON encodes a non-finite ratio as null alongside ratio_defined=false,
// since JSON has no representation for Inf or NaN.
func (a SegmentAggregate) MarshalJSON() ([]byte, error) {
	var ratio *float64
	if a.RatioDefined() {
		r := a.SalesToProfitRatio
		ratio = &r
	}
	return json.Marshal(struct {
		Segment            string   `json:"segment"`
		SalesSum           float64  `json:"sales_sum"`
		ProfitSum          float64  `json:"profit_sum"`
		SalesToProfitRatio *float64 `json:"sales_to_profit_ratio"`
		RatioDefined       bool     `json:"ratio_defined"`
	}{
		Segment:            a.Segment,
		SalesSum:           a.SalesSum,
		ProfitSum:          a.ProfitSum,
		SalesToProfitRatio: ratio,
		RatioDefined:       ratio != nil,
	})
}

// UnmarshalJSON restores a null ratio as NaN.
func (a *SegmentAggregate) UnmarshalJSON(data []byte) error {
	var wire struct {
		Segment            string   `json:"segment"`
		SalesSum           float64  `json:"sales_sum"`
		ProfitSum          float64  `json:"profit_sum"`
		SalesToProfitRatio *float64 `json:"sales_to_profit_ratio"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.Segment = wire.Segment
	a.SalesSum = wire.SalesSum
	a.ProfitSum = wire.ProfitSum
	a.SalesToProfitRatio = math.NaN()
	if wire.SalesToProfitRatio != nil {
		a.SalesToProfitRatio = *wire.SalesToProfitRatio
	}
	return nil
}

// Melted variable names for the long-form segment table.
const (
	VariableSales  = "Sales"
	VariableProfit = "Profit"
)

// MeltedRow is one (segment, variable, value) row of the long-form segment
// table, ready for a grouped bar chart.
type MeltedRow struct {
	Segment  string  `json:"segment"`
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

// CategoryAggregate is the per-category profit rollup used for the share
// breakdown. Categories with zero or negative profit are kept.
type CategoryAggregate struct {
	Category  string  `json:"category"`
	ProfitSum float64 `json:"profit_sum"`
	SharePct  float64 `json:"share_pct"` // 0 when total profit is 0
}

// Dashboard is everything the presentation layer needs for one selection.
type Dashboard struct {
	Selection    []string            `json:"selection"`
	RowCount     int                 `json:"row_count"`
	KPIs         KPISummary          `json:"kpis"`
	Segments     []SegmentAggregate  `json:"segments"`
	SegmentsLong []MeltedRow         `json:"segments_long"`
	Categories   []CategoryAggregate `json:"categories"`
}

// ChartKind names one of the dashboard charts.
type ChartKind string

const (
	ChartSegments   ChartKind = "segments"   // sales vs profit by segment
	ChartRatio      ChartKind = "ratio"      // sales to profit ratio by segment
	ChartCategories ChartKind = "categories" // profit share by category
)

// ChartKinds lists every chart in display order.
var ChartKinds = []ChartKind{ChartSegments, ChartRatio, ChartCategories}

// ParseChartKind resolves a chart name, accepting an optional ".png" suffix.
func ParseChartKind(name string) (ChartKind, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".png")
	for _, k := range ChartKinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", name)
}

// Title returns the chart heading shown above the image.
func (k ChartKind) Title() string {
	switch k {
	case ChartSegments:
		return "Sales vs Profit by Segment"
	case ChartRatio:
		return "Sales to Profit Ratio"
	case ChartCategories:
		return "Profit Share by Category"
	default:
		return string(k)
	}
}
