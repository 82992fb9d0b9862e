package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/interfaces"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("SalesDash MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleListSegments implements the list_segments tool
func handleListSegments(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		segments, err := svc.Segments(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List segments failed")
			return errorResult(fmt.Sprintf("Dataset error: %v", err)), nil
		}
		rows, err := svc.RowCount(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Dataset error: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# Segments (%d rows)\n\n", rows))
		for _, s := range segments {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
		return textResult(sb.String()), nil
	}
}

// handleGetDashboard implements the get_dashboard tool
func handleGetDashboard(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		segments := request.GetStringSlice("segments", nil)

		d, err := svc.Dashboard(ctx, segments)
		if err != nil {
			logger.Error().Err(err).Strs("segments", segments).Msg("Dashboard failed")
			return errorResult(fmt.Sprintf("Dashboard error: %v", err)), nil
		}

		return textResult(formatDashboard(d)), nil
	}
}

// handleGetSegmentBreakdown implements the get_segment_breakdown tool
func handleGetSegmentBreakdown(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		segments := request.GetStringSlice("segments", nil)

		d, err := svc.Dashboard(ctx, segments)
		if err != nil {
			logger.Error().Err(err).Strs("segments", segments).Msg("Segment breakdown failed")
			return errorResult(fmt.Sprintf("Dashboard error: %v", err)), nil
		}

		return textResult(formatSegmentTable(d.Segments)), nil
	}
}

// handleGetCategoryShare implements the get_category_share tool
func handleGetCategoryShare(svc interfaces.DashboardService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		segments := request.GetStringSlice("segments", nil)

		d, err := svc.Dashboard(ctx, segments)
		if err != nil {
			logger.Error().Err(err).Strs("segments", segments).Msg("Category share failed")
			return errorResult(fmt.Sprintf("Dashboard error: %v", err)), nil
		}

		return textResult(formatCategoryTable(d.Categories)), nil
	}
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
