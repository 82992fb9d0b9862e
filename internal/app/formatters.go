package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/models"
)

// formatDashboard formats a computed dashboard as markdown
func formatDashboard(d *models.Dashboard) string {
	var sb strings.Builder

	sb.WriteString("# Sales Dashboard\n\n")
	if len(d.Selection) == 0 {
		sb.WriteString("**Segments:** none selected\n")
	} else {
		sb.WriteString(fmt.Sprintf("**Segments:** %s\n", strings.Join(d.Selection, ", ")))
	}
	sb.WriteString(fmt.Sprintf("**Rows:** %d\n\n", d.RowCount))

	sb.WriteString("## Key Metrics\n\n")
	sb.WriteString(fmt.Sprintf("- **Total Sales:** %s\n", common.FormatMoney(d.KPIs.TotalSales)))
	sb.WriteString(fmt.Sprintf("- **Total Profit:** %s\n", common.FormatMoney(d.KPIs.TotalProfit)))
	sb.WriteString(fmt.Sprintf("- **Profit Margin:** %s\n\n", common.FormatPercent(d.KPIs.ProfitMarginPct)))

	if len(d.Segments) > 0 {
		sb.WriteString("## By Segment\n\n")
		sb.WriteString(formatSegmentTable(d.Segments))
		sb.WriteString("\n")
	}

	if len(d.Categories) > 0 {
		sb.WriteString("## Profit Share by Category\n\n")
		sb.WriteString(formatCategoryTable(d.Categories))
	}

	return sb.String()
}

// formatSegmentTable formats per-segment totals as a markdown table
func formatSegmentTable(aggs []models.SegmentAggregate) string {
	if len(aggs) == 0 {
		return "No segments selected.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Segment | Sales | Profit | Sales/Profit |\n")
	sb.WriteString("|---------|-------|--------|--------------|\n")
	for _, a := range aggs {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			a.Segment,
			common.FormatMoney(a.SalesSum),
			common.FormatMoney(a.ProfitSum),
			common.FormatRatio(a.SalesToProfitRatio),
		))
	}
	return sb.String()
}

// formatCategoryTable formats category profit share as a markdown table
func formatCategoryTable(cats []models.CategoryAggregate) string {
	if len(cats) == 0 {
		return "No categories in selection.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Category | Profit | Share |\n")
	sb.WriteString("|----------|--------|-------|\n")
	for _, c := range cats {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			c.Category,
			common.FormatMoney(c.ProfitSum),
			common.FormatPercent(c.SharePct),
		))
	}
	return sb.String()
}
