package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const segmentsParamDescription = "Segments to include (e.g., ['Consumer', 'Corporate']). Omit for every segment; pass an empty list for none."

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the SalesDash server version and status. Use this to verify connectivity."),
	)
}

// createListSegmentsTool returns the list_segments tool definition
func createListSegmentsTool() mcp.Tool {
	return mcp.NewTool("list_segments",
		mcp.WithDescription("List the customer segments present in the sales dataset, with the total row count."),
	)
}

// createGetDashboardTool returns the get_dashboard tool definition
func createGetDashboardTool() mcp.Tool {
	return mcp.NewTool("get_dashboard",
		mcp.WithDescription("Get the sales dashboard for a segment selection: total sales, total profit, profit margin, per-segment totals and profit share by category."),
		mcp.WithArray("segments",
			mcp.WithStringItems(),
			mcp.Description(segmentsParamDescription),
		),
	)
}

// createGetSegmentBreakdownTool returns the get_segment_breakdown tool definition
func createGetSegmentBreakdownTool() mcp.Tool {
	return mcp.NewTool("get_segment_breakdown",
		mcp.WithDescription("Get sales, profit and the sales-to-profit ratio for each selected segment. The ratio is reported as n/a when a segment's profit sums to zero."),
		mcp.WithArray("segments",
			mcp.WithStringItems(),
			mcp.Description(segmentsParamDescription),
		),
	)
}

// createGetCategoryShareTool returns the get_category_share tool definition
func createGetCategoryShareTool() mcp.Tool {
	return mcp.NewTool("get_category_share",
		mcp.WithDescription("Get each product category's share of total profit for a segment selection. Loss-making categories carry a negative share."),
		mcp.WithArray("segments",
			mcp.WithStringItems(),
			mcp.Description(segmentsParamDescription),
		),
	)
}
