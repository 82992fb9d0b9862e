package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/salesdash/internal/app"
	"github.com/bobmcallan/salesdash/internal/common"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleDataPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "dataset", "testdata", "superstore_sample.csv"))
	require.NoError(t, err)
	return p
}

// newTestServer builds a Server over the sample dataset with rate limiting
// disabled unless the config says otherwise.
func newTestServer(t *testing.T, mutate ...func(*common.Config)) *Server {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Data.Path = sampleDataPath(t)
	cfg.Charts.Width, cfg.Charts.Height = 400, 300
	cfg.RateLimit.RequestsPerSecond = 0
	for _, fn := range mutate {
		fn(cfg)
	}

	a, err := app.NewAppWithConfig(context.Background(), cfg, common.NewSilentLogger())
	require.NoError(t, err)

	s := NewServer(a)
	t.Cleanup(func() { s.hub.Stop() })
	return s
}

func doGet(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/health")

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(20), body["rows"])
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestVersion(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/version")

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, common.GetVersion(), body["version"])
}

func TestSegments(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/segments")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Segments []string `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"Consumer", "Corporate", "Home Office"}, body.Segments)
}

func TestDashboard_DefaultsToAllSegments(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/dashboard")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Selection []string `json:"selection"`
		RowCount  int      `json:"row_count"`
		KPIs      struct {
			TotalSales      float64 `json:"total_sales"`
			TotalProfit     float64 `json:"total_profit"`
			ProfitMarginPct float64 `json:"profit_margin_pct"`
		} `json:"kpis"`
		Segments []struct {
			Segment      string   `json:"segment"`
			Ratio        *float64 `json:"sales_to_profit_ratio"`
			RatioDefined bool     `json:"ratio_defined"`
		} `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, []string{"Consumer", "Corporate", "Home Office"}, body.Selection)
	assert.Equal(t, 20, body.RowCount)
	assert.InDelta(t, 8607.6475, body.KPIs.TotalSales, 1e-6)
	assert.InDelta(t, -1369.8059, body.KPIs.TotalProfit, 1e-6)
	require.Len(t, body.Segments, 3)
	require.NotNil(t, body.Segments[1].Ratio)
	assert.True(t, body.Segments[1].RatioDefined)
	assert.InDelta(t, 8.5923, *body.Segments[1].Ratio, 1e-4)
}

func TestDashboard_SelectionForms(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"comma separated", "?segments=Consumer,Home%20Office", []string{"Consumer", "Home Office"}},
		{"repeated", "?segments=Corporate&segments=Consumer", []string{"Consumer", "Corporate"}},
		{"present but empty", "?segments=", []string{}},
		{"form with hidden empty value", "?segments=&segments=Corporate", []string{"Corporate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doGet(t, s, "/api/dashboard"+tt.query)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var body struct {
				Selection []string `json:"selection"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Selection)
		})
	}
}

func TestDashboard_EmptySelectionHasZeroKPIs(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/dashboard?segments=")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_sales":0,"total_profit":0,"profit_margin_pct":0`)
	assert.Contains(t, rr.Body.String(), `"row_count":0`)
}

func TestDashboard_UnknownSegment(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/dashboard?segments=Wholesale")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "invalid_selection", body.Code)
	assert.Contains(t, body.Error, "Wholesale")
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"segments.png", "ratio.png", "categories.png", "segments"} {
		t.Run(name, func(t *testing.T) {
			rr := doGet(t, s, "/api/charts/"+name)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic))
		})
	}
}

func TestCharts_UnknownKind(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/charts/heatmap.png")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCharts_EmptySelection(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/charts/segments.png?segments=")

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "no_chart_data")
}

func TestDownload_PassThrough(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/api/download?segments=Consumer")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sales_report.csv"`, rr.Header().Get("Content-Disposition"))

	// The download ignores the selection and matches the source file.
	want, err := os.ReadFile(sampleDataPath(t))
	require.NoError(t, err)
	assert.Equal(t, string(want), rr.Body.String())
}

func TestDownload_RateLimited(t *testing.T) {
	s := newTestServer(t, func(c *common.Config) {
		c.RateLimit.RequestsPerSecond = 0.001
		c.RateLimit.Burst = 1
	})

	first := doGet(t, s, "/api/download")
	require.Equal(t, http.StatusOK, first.Code)

	second := doGet(t, s, "/api/download")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// Cheap endpoints are not limited.
	assert.Equal(t, http.StatusOK, doGet(t, s, "/api/dashboard").Code)
}

func TestPage(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/?segments=Corporate")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Business Sales &amp; Profit Dashboard")
	assert.Contains(t, body, `value="Corporate" checked`)
	assert.NotContains(t, body, `value="Consumer" checked`)
	assert.Contains(t, body, "/api/charts/segments.png?segments=Corporate")
	assert.Contains(t, body, `href="/api/download"`)
}

func TestPage_NoneSelected(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/?segments=")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "$0.00")
	assert.Contains(t, body, "0.00%")
	assert.Contains(t, body, "No rows in the current selection.")
	assert.NotContains(t, body, "<img")
}

func TestPage_InvalidSelection(t *testing.T) {
	s := newTestServer(t)
	rr := doGet(t, s, "/?segments=Wholesale")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Wholesale")
}

func TestPage_UnknownPath(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, doGet(t, s, "/favicon.ico").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	doGet(t, s, "/api/dashboard")

	rr := doGet(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `salesdash_http_requests_total{method="GET",route="/api/dashboard",status="200"} 1`)
	assert.Contains(t, string(body), "salesdash_dataset_rows 20")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDPassThrough(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "abc123", rr.Header().Get("X-Correlation-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "Internal server error"))
}
