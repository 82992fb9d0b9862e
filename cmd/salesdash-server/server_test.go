package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/salesdash/internal/app"
	"github.com/bobmcallan/salesdash/internal/server"
)

// testServer creates an httptest.Server with the full salesdash-server handler.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := app.NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dataPath, err := filepath.Abs(filepath.Join("..", "..", "internal", "dataset", "testdata", "superstore_sample.csv"))
	if err != nil {
		t.Fatalf("Failed to resolve sample path: %v", err)
	}

	config := `
[data]
path = "` + filepath.ToSlash(dataPath) + `"

[ratelimit]
requests_per_second = 0

[logging]
level = "error"
`
	configPath := filepath.Join(t.TempDir(), "salesdash.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// TestHealthEndpoint verifies GET /api/health returns 200 with status ok.
func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status=ok, got %v", body["status"])
	}
}

// TestDashboardEndpoint verifies the dashboard JSON over a real connection.
func TestDashboardEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/dashboard?segments=Consumer")
	if err != nil {
		t.Fatalf("GET /api/dashboard failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Selection []string `json:"selection"`
		RowCount  int      `json:"row_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Selection) != 1 || body.Selection[0] != "Consumer" {
		t.Errorf("Expected selection [Consumer], got %v", body.Selection)
	}
	if body.RowCount == 0 {
		t.Error("Expected Consumer rows")
	}
}

// TestMCPOverHTTP calls the get_dashboard tool through the /mcp endpoint.
func TestMCPOverHTTP(t *testing.T) {
	ts := testServer(t)

	c, err := client.NewStreamableHttpClient(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("Failed to create MCP client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Failed to start MCP client: %v", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_dashboard"
	result, err := c.CallTool(ctx, req)
	if err != nil {
		t.Fatalf("get_dashboard failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	text := result.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "Total Sales") {
		t.Errorf("Expected KPI section, got: %s", text)
	}
}
