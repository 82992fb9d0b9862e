package dashboard

import (
	"sort"

	"github.com/bobmcallan/salesdash/internal/dataset"
	"github.com/bobmcallan/salesdash/internal/models"
)

// Selection is the set of segment values the caller wants to see.
// An empty Selection yields an empty view.
type Selection map[string]struct{}

// NewSelection builds a Selection from segment values.
func NewSelection(values ...string) Selection {
	sel := make(Selection, len(values))
	for _, v := range values {
		sel[v] = struct{}{}
	}
	return sel
}

// Contains reports whether segment is selected.
func (s Selection) Contains(segment string) bool {
	_, ok := s[segment]
	return ok
}

// Values returns the selected segments in ascending order.
func (s Selection) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter returns the records whose segment is selected, in dataset order.
func Filter(ds *dataset.Dataset, sel Selection) []models.Record {
	view := make([]models.Record, 0)
	if ds == nil || len(sel) == 0 {
		return view
	}
	for _, r := range ds.Records {
		if sel.Contains(r.Segment) {
			view = append(view, r)
		}
	}
	return view
}

// ComputeKPIs sums sales and profit over the view. The margin is defined as
// 0 when there are no sales.
func ComputeKPIs(view []models.Record) models.KPISummary {
	var k models.KPISummary
	for _, r := range view {
		k.TotalSales += r.Sales
		k.TotalProfit += r.Profit
	}
	if k.TotalSales != 0 {
		k.ProfitMarginPct = k.TotalProfit / k.TotalSales * 100
	}
	return k
}

// AggregateBySegment groups the view by segment. The sales-to-profit ratio is
// left unguarded: a zero profit sum produces ±Inf (or NaN with zero sales).
func AggregateBySegment(view []models.Record) []models.SegmentAggregate {
	sums := make(map[string]*models.SegmentAggregate)
	for _, r := range view {
		agg, ok := sums[r.Segment]
		if !ok {
			agg = &models.SegmentAggregate{Segment: r.Segment}
			sums[r.Segment] = agg
		}
		agg.SalesSum += r.Sales
		agg.ProfitSum += r.Profit
	}

	out := make([]models.SegmentAggregate, 0, len(sums))
	for _, key := range sortedKeys(sums) {
		agg := *sums[key]
		agg.SalesToProfitRatio = agg.SalesSum / agg.ProfitSum
		out = append(out, agg)
	}
	return out
}

// MeltSegments reshapes segment aggregates into long form: every Sales row in
// segment order, followed by every Profit row.
func MeltSegments(aggs []models.SegmentAggregate) []models.MeltedRow {
	out := make([]models.MeltedRow, 0, 2*len(aggs))
	for _, a := range aggs {
		out = append(out, models.MeltedRow{Segment: a.Segment, Variable: models.VariableSales, Value: a.SalesSum})
	}
	for _, a := range aggs {
		out = append(out, models.MeltedRow{Segment: a.Segment, Variable: models.VariableProfit, Value: a.ProfitSum})
	}
	return out
}

// AggregateByCategory groups the view by category. Every category present in
// the view is emitted, including those with zero or negative profit.
func AggregateByCategory(view []models.Record) []models.CategoryAggregate {
	sums := make(map[string]*models.CategoryAggregate)
	for _, r := range view {
		agg, ok := sums[r.Category]
		if !ok {
			agg = &models.CategoryAggregate{Category: r.Category}
			sums[r.Category] = agg
		}
		agg.ProfitSum += r.Profit
	}

	out := make([]models.CategoryAggregate, 0, len(sums))
	var total float64
	for _, key := range sortedKeys(sums) {
		out = append(out, *sums[key])
		total += sums[key].ProfitSum
	}
	if total != 0 {
		for i := range out {
			out[i].SharePct = out[i].ProfitSum / total * 100
		}
	}
	return out
}

// Compute runs the whole pipeline for one selection.
func Compute(ds *dataset.Dataset, sel Selection) (*models.Dashboard, error) {
	if ds == nil {
		return nil, dataset.ErrDataUnavailable
	}

	view := Filter(ds, sel)
	segments := AggregateBySegment(view)

	return &models.Dashboard{
		Selection:    sel.Values(),
		RowCount:     len(view),
		KPIs:         ComputeKPIs(view),
		Segments:     segments,
		SegmentsLong: MeltSegments(segments),
		Categories:   AggregateByCategory(view),
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
