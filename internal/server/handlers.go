package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/dataset"
	"github.com/bobmcallan/salesdash/internal/models"
	"github.com/bobmcallan/salesdash/internal/services/dashboard"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	rows, err := s.app.DashboardService.RowCount(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"rows":       rows,
		"ws_clients": s.hub.ClientCount(),
		"loaded_at":  s.app.Cache.LoadedAt(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Dashboard handlers ---

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	segments, err := s.app.DashboardService.Segments(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"segments": segments})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	d, err := s.app.DashboardService.Dashboard(r.Context(), ParseSelection(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// handleChart serves GET /api/charts/{kind}.png
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	kind, err := models.ParseChartKind(PathParam(r, "/api/charts/", ""))
	if err != nil {
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "unknown_chart")
		return
	}

	png, err := s.app.DashboardService.RenderChart(r.Context(), kind, ParseSelection(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleDownload streams the unfiltered dataset as a CSV attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	// Buffer first so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := s.app.DashboardService.Export(r.Context(), &buf); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.app.Config.Export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// writeServiceError maps dashboard and dataset errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= 500 {
		s.logger.Error().Err(err).Msg("Dashboard request failed")
	}
	WriteErrorWithCode(w, status, err.Error(), code)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidSelection):
		return http.StatusBadRequest, "invalid_selection"
	case errors.Is(err, dashboard.ErrNoChartData):
		return http.StatusUnprocessableEntity, "no_chart_data"
	case errors.Is(err, dataset.ErrSchema):
		return http.StatusUnprocessableEntity, "schema_error"
	case errors.Is(err, dataset.ErrDataUnavailable):
		return http.StatusServiceUnavailable, "data_unavailable"
	default:
		return http.StatusInternalServerError, ""
	}
}
