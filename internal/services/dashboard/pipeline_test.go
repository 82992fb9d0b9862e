package dashboard

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/salesdash/internal/dataset"
	"github.com/bobmcallan/salesdash/internal/models"
)

func twoRowDataset() *dataset.Dataset {
	return &dataset.Dataset{Records: []models.Record{
		{Segment: "Consumer", Category: "Furniture", Sales: 100, Profit: 10},
		{Segment: "Corporate", Category: "Office", Sales: 200, Profit: -20},
	}}
}

func mixedDataset() *dataset.Dataset {
	return &dataset.Dataset{Records: []models.Record{
		{Segment: "Home Office", Category: "Technology", Sales: 300, Profit: 45},
		{Segment: "Consumer", Category: "Furniture", Sales: 120.5, Profit: -30.25},
		{Segment: "Corporate", Category: "Office Supplies", Sales: 80, Profit: 12},
		{Segment: "Consumer", Category: "Technology", Sales: 410, Profit: 60.75},
		{Segment: "Corporate", Category: "Furniture", Sales: 55.5, Profit: -5.5},
		{Segment: "Home Office", Category: "Office Supplies", Sales: 19.99, Profit: 3.1},
	}}
}

func TestScenarioA_AllSegments(t *testing.T) {
	d, err := Compute(twoRowDataset(), NewSelection("Consumer", "Corporate"))
	require.NoError(t, err)

	assert.Equal(t, 300.0, d.KPIs.TotalSales)
	assert.Equal(t, -10.0, d.KPIs.TotalProfit)
	assert.InDelta(t, -3.33, d.KPIs.ProfitMarginPct, 0.005)
	assert.Equal(t, 2, d.RowCount)
}

func TestScenarioB_EmptySelection(t *testing.T) {
	d, err := Compute(twoRowDataset(), NewSelection())
	require.NoError(t, err)

	assert.Equal(t, models.KPISummary{}, d.KPIs)
	assert.Equal(t, 0, d.RowCount)
	assert.Empty(t, d.Segments)
	assert.Empty(t, d.SegmentsLong)
	assert.Empty(t, d.Categories)
	assert.Empty(t, d.Selection)
}

func TestScenarioC_ZeroProfitRatioIsNonFinite(t *testing.T) {
	ds := &dataset.Dataset{Records: []models.Record{
		{Segment: "Consumer", Category: "Furniture", Sales: 40, Profit: 0},
		{Segment: "Consumer", Category: "Office", Sales: 60, Profit: 0},
		{Segment: "Corporate", Category: "Office", Sales: 0, Profit: 0},
		{Segment: "Home Office", Category: "Office", Sales: 10, Profit: 5},
	}}

	aggs := AggregateBySegment(Filter(ds, NewSelection("Consumer", "Corporate", "Home Office")))
	require.Len(t, aggs, 3)

	// Unguarded division: positive sales over zero profit is +Inf,
	// zero over zero is NaN.
	assert.True(t, math.IsInf(aggs[0].SalesToProfitRatio, 1), "Consumer ratio = %v", aggs[0].SalesToProfitRatio)
	assert.False(t, aggs[0].RatioDefined())
	assert.True(t, math.IsNaN(aggs[1].SalesToProfitRatio), "Corporate ratio = %v", aggs[1].SalesToProfitRatio)
	assert.Equal(t, 2.0, aggs[2].SalesToProfitRatio)
	assert.True(t, aggs[2].RatioDefined())
}

func TestMarginIsZeroWithoutSales(t *testing.T) {
	k := ComputeKPIs([]models.Record{
		{Segment: "Consumer", Sales: 0, Profit: 25},
		{Segment: "Consumer", Sales: 0, Profit: -5},
	})
	assert.Equal(t, 0.0, k.TotalSales)
	assert.Equal(t, 20.0, k.TotalProfit)
	assert.Equal(t, 0.0, k.ProfitMarginPct)
}

func TestFilter_SubsetOfDataset(t *testing.T) {
	ds := mixedDataset()
	selections := []Selection{
		NewSelection(),
		NewSelection("Consumer"),
		NewSelection("Corporate", "Home Office"),
		NewSelection("Consumer", "Corporate", "Home Office"),
	}

	for _, sel := range selections {
		view := Filter(ds, sel)
		idx := 0
		for _, r := range view {
			assert.True(t, sel.Contains(r.Segment))
			// view preserves dataset order
			for idx < len(ds.Records) && ds.Records[idx] != r {
				idx++
			}
			require.Less(t, idx, len(ds.Records), "record %+v not found in dataset order", r)
			idx++
		}
	}

	assert.Empty(t, Filter(ds, NewSelection()))
	assert.Len(t, Filter(ds, NewSelection("Consumer", "Corporate", "Home Office")), len(ds.Records))
}

func TestFilter_NilDataset(t *testing.T) {
	assert.Empty(t, Filter(nil, NewSelection("Consumer")))
}

func TestTotalsMatchGroupedSums(t *testing.T) {
	ds := mixedDataset()
	for _, sel := range []Selection{
		NewSelection("Consumer"),
		NewSelection("Consumer", "Home Office"),
		NewSelection("Consumer", "Corporate", "Home Office"),
	} {
		d, err := Compute(ds, sel)
		require.NoError(t, err)

		var segSales, segProfit, catProfit, share float64
		for _, s := range d.Segments {
			segSales += s.SalesSum
			segProfit += s.ProfitSum
		}
		for _, c := range d.Categories {
			catProfit += c.ProfitSum
			share += c.SharePct
		}

		assert.InDelta(t, d.KPIs.TotalSales, segSales, 1e-9)
		assert.InDelta(t, d.KPIs.TotalProfit, segProfit, 1e-9)
		assert.InDelta(t, d.KPIs.TotalProfit, catProfit, 1e-9)
		assert.InDelta(t, 100.0, share, 1e-9)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	ds := mixedDataset()
	sel := NewSelection("Consumer", "Corporate")

	first, err := Compute(ds, sel)
	require.NoError(t, err)
	second, err := Compute(ds, sel)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))
	assert.Equal(t, math.Float64bits(first.KPIs.ProfitMarginPct), math.Float64bits(second.KPIs.ProfitMarginPct))
}

func TestCompute_NilDataset(t *testing.T) {
	_, err := Compute(nil, NewSelection("Consumer"))
	assert.ErrorIs(t, err, dataset.ErrDataUnavailable)
}

func TestAggregateBySegment_SortedAndSummed(t *testing.T) {
	aggs := AggregateBySegment(mixedDataset().Records)
	require.Len(t, aggs, 3)

	assert.Equal(t, "Consumer", aggs[0].Segment)
	assert.Equal(t, "Corporate", aggs[1].Segment)
	assert.Equal(t, "Home Office", aggs[2].Segment)

	assert.InDelta(t, 530.5, aggs[0].SalesSum, 1e-9)
	assert.InDelta(t, 30.5, aggs[0].ProfitSum, 1e-9)
	assert.InDelta(t, 530.5/30.5, aggs[0].SalesToProfitRatio, 1e-9)
	assert.InDelta(t, 135.5, aggs[1].SalesSum, 1e-9)
	assert.InDelta(t, 6.5, aggs[1].ProfitSum, 1e-9)
}

func TestMeltSegments_LongForm(t *testing.T) {
	aggs := []models.SegmentAggregate{
		{Segment: "Consumer", SalesSum: 100, ProfitSum: 10},
		{Segment: "Corporate", SalesSum: 200, ProfitSum: -20},
	}

	got := MeltSegments(aggs)
	want := []models.MeltedRow{
		{Segment: "Consumer", Variable: "Sales", Value: 100},
		{Segment: "Corporate", Variable: "Sales", Value: 200},
		{Segment: "Consumer", Variable: "Profit", Value: 10},
		{Segment: "Corporate", Variable: "Profit", Value: -20},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, MeltSegments(nil))
}

func TestAggregateByCategory_KeepsNonPositive(t *testing.T) {
	cats := AggregateByCategory(mixedDataset().Records)
	require.Len(t, cats, 3)

	assert.Equal(t, "Furniture", cats[0].Category)
	assert.InDelta(t, -35.75, cats[0].ProfitSum, 1e-9)
	assert.Equal(t, "Office Supplies", cats[1].Category)
	assert.InDelta(t, 15.1, cats[1].ProfitSum, 1e-9)
	assert.Equal(t, "Technology", cats[2].Category)
	assert.InDelta(t, 105.75, cats[2].ProfitSum, 1e-9)

	total := -35.75 + 15.1 + 105.75
	assert.InDelta(t, -35.75/total*100, cats[0].SharePct, 1e-9)
}

func TestAggregateByCategory_ZeroTotalShare(t *testing.T) {
	cats := AggregateByCategory([]models.Record{
		{Category: "Furniture", Profit: 10},
		{Category: "Office", Profit: -10},
	})
	require.Len(t, cats, 2)
	for _, c := range cats {
		assert.Equal(t, 0.0, c.SharePct)
	}
}

func TestSelection_Values(t *testing.T) {
	sel := NewSelection("Home Office", "Consumer", "Consumer")
	assert.Equal(t, []string{"Consumer", "Home Office"}, sel.Values())
	assert.Equal(t, []string{}, NewSelection().Values())
}

func TestCompute_SampleFile(t *testing.T) {
	ds, err := dataset.Parse(mustOpen(t, "../../dataset/testdata/superstore_sample.csv"), dataset.Options{})
	require.NoError(t, err)

	d, err := Compute(ds, NewSelection(ds.Segments()...))
	require.NoError(t, err)

	assert.Equal(t, 20, d.RowCount)
	assert.InDelta(t, 8607.6475, d.KPIs.TotalSales, 1e-6)
	assert.InDelta(t, -1369.8059, d.KPIs.TotalProfit, 1e-6)
	assert.InDelta(t, -15.9138, d.KPIs.ProfitMarginPct, 1e-4)

	require.Len(t, d.Segments, 3)
	assert.InDelta(t, 8.5923, d.Segments[1].SalesToProfitRatio, 1e-4)
	require.Len(t, d.Categories, 3)
	assert.InDelta(t, 106.7262, d.Categories[2].ProfitSum, 1e-6)
}
