// Package dashboard filters the sales dataset by segment and computes the
// KPI summary, grouped aggregates and charts for the presentation layer.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/dataset"
	"github.com/bobmcallan/salesdash/internal/interfaces"
	"github.com/bobmcallan/salesdash/internal/models"
)

// ErrInvalidSelection is returned when a requested segment is not present in
// the dataset.
var ErrInvalidSelection = errors.New("invalid segment selection")

// Compile-time check that Service implements DashboardService
var _ interfaces.DashboardService = (*Service)(nil)

// Service recomputes the dashboard on every call from the cached dataset.
type Service struct {
	cache    *dataset.Cache
	logger   *common.Logger
	size     ChartSize
	observer func(stage string, d time.Duration)
}

// Option configures a Service.
type Option func(*Service)

// WithChartSize sets the rendered chart dimensions.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		s.size = ChartSize{Width: width, Height: height}
	}
}

// WithObserver receives the duration of every pipeline and render call,
// keyed by stage ("compute" or "render").
func WithObserver(fn func(stage string, d time.Duration)) Option {
	return func(s *Service) {
		s.observer = fn
	}
}

// NewService creates a dashboard service over cache.
func NewService(cache *dataset.Cache, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		cache:  cache,
		logger: logger,
		size:   ChartSize{Width: 800, Height: 450},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segments returns the distinct segment values in the dataset.
func (s *Service) Segments(ctx context.Context) ([]string, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Segments(), nil
}

// Dashboard computes the dashboard for segments. A nil slice selects every
// segment; an empty non-nil slice selects none.
func (s *Service) Dashboard(ctx context.Context, segments []string) (*models.Dashboard, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	sel, err := resolveSelection(ds, segments)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := Compute(ds, sel)
	if err != nil {
		return nil, err
	}
	s.observe("compute", time.Since(start))

	s.logger.Debug().
		Strs("selection", d.Selection).
		Int("rows", d.RowCount).
		Float64("total_sales", d.KPIs.TotalSales).
		Msg("Dashboard computed")

	for _, seg := range d.Segments {
		if !seg.RatioDefined() {
			s.logger.Debug().
				Str("segment", seg.Segment).
				Float64("profit_sum", seg.ProfitSum).
				Msg("Sales to profit ratio undefined for zero profit")
		}
	}

	return d, nil
}

// RenderChart computes the dashboard for segments and renders one chart.
func (s *Service) RenderChart(ctx context.Context, kind models.ChartKind, segments []string) ([]byte, error) {
	d, err := s.Dashboard(ctx, segments)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	png, err := RenderChart(kind, d, s.size)
	if err != nil {
		return nil, err
	}
	s.observe("render", time.Since(start))
	return png, nil
}

// Export writes the full, unfiltered dataset as delimited text.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}
	return dataset.WriteCSV(w, ds)
}

// RowCount returns the number of rows in the loaded dataset.
func (s *Service) RowCount(ctx context.Context) (int, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

func (s *Service) observe(stage string, d time.Duration) {
	if s.observer != nil {
		s.observer(stage, d)
	}
}

// resolveSelection maps requested segments onto a Selection, defaulting to
// every segment when none were requested.
func resolveSelection(ds *dataset.Dataset, segments []string) (Selection, error) {
	known := ds.Segments()
	if segments == nil {
		return NewSelection(known...), nil
	}

	valid := NewSelection(known...)
	for _, seg := range segments {
		if !valid.Contains(seg) {
			return nil, fmt.Errorf("%w: unknown segment %q", ErrInvalidSelection, seg)
		}
	}
	return NewSelection(segments...), nil
}
