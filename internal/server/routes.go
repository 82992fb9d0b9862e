package server

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerRoutes sets up all routes on the mux. Each route is instrumented
// under its pattern so metrics carry a bounded label set.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	m := s.app.Metrics

	// Page
	mux.Handle("/", instrument(m, "/", http.HandlerFunc(s.handlePage)))

	// System
	mux.Handle("/api/health", instrument(m, "/api/health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("/api/version", instrument(m, "/api/version", http.HandlerFunc(s.handleVersion)))

	// Dashboard
	mux.Handle("/api/segments", instrument(m, "/api/segments", http.HandlerFunc(s.handleSegments)))
	mux.Handle("/api/dashboard", instrument(m, "/api/dashboard", http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/api/charts/", instrument(m, "/api/charts/", rateLimit(s.limiter, http.HandlerFunc(s.handleChart))))
	mux.Handle("/api/download", instrument(m, "/api/download", rateLimit(s.limiter, http.HandlerFunc(s.handleDownload))))

	// Live updates
	mux.HandleFunc("/api/ws/dashboard", s.hub.ServeWS)

	// MCP over streamable HTTP
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer, mcpserver.WithStateLess(true)))

	// Prometheus
	mux.Handle("/metrics", m.Handler())
}
