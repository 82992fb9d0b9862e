package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/salesdash/internal/app"
	"github.com/bobmcallan/salesdash/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app     *app.App
	server  *http.Server
	logger  *common.Logger
	hub     *DashboardHub
	limiter *rate.Limiter
}

// NewServer creates a new HTTP server for the dashboard page, REST API,
// websocket updates, MCP endpoint and metrics.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:     a,
		logger:  a.Logger,
		hub:     NewDashboardHub(a.DashboardService, a.Logger),
		limiter: newLimiter(a.Config.RateLimit),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a.Logger)

	host := a.Config.Server.Host
	port := a.Config.Server.Port

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.hub.Run()

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting dashboard server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	return s.server.Shutdown(ctx)
}

// newLimiter returns nil when rate limiting is disabled.
func newLimiter(cfg common.RateLimitConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}
