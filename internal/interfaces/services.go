// Package interfaces defines service contracts for salesdash
package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/salesdash/internal/models"
)

// DashboardService computes the sales dashboard for a segment selection.
// A nil segments slice selects every segment in the dataset; an empty
// non-nil slice selects none.
type DashboardService interface {
	// Segments returns the distinct segment values available for filtering
	Segments(ctx context.Context) ([]string, error)

	// Dashboard filters the dataset and computes KPIs and aggregates
	Dashboard(ctx context.Context, segments []string) (*models.Dashboard, error)

	// RenderChart renders one dashboard chart as PNG
	RenderChart(ctx context.Context, kind models.ChartKind, segments []string) ([]byte, error)

	// Export writes the full, unfiltered dataset
	Export(ctx context.Context, w io.Writer) error

	// RowCount returns the number of rows in the dataset
	RowCount(ctx context.Context) (int, error)
}
