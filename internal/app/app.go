package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/dataset"
	"github.com/bobmcallan/salesdash/internal/interfaces"
	"github.com/bobmcallan/salesdash/internal/metrics"
	"github.com/bobmcallan/salesdash/internal/services/dashboard"
)

// App holds the loaded dataset cache, the dashboard service and the MCP server.
// It is the shared core used by both cmd/salesdash-server and cmd/salesdash.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Metrics          *metrics.Metrics
	Cache            *dataset.Cache
	DashboardService interfaces.DashboardService
	MCPServer        *server.MCPServer
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, SALESDASH_CONFIG,
// salesdash.toml next to the binary, then config/salesdash.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("SALESDASH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "salesdash.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/salesdash.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the App.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return NewAppWithConfig(context.Background(), config, logger)
}

// NewAppWithConfig initializes the App from an already loaded config. The
// dataset is loaded eagerly so a missing or malformed file fails startup
// rather than the first request.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	m := metrics.New()

	cache := dataset.NewFileCache(dataset.Options{
		Path:      config.Data.Path,
		Delimiter: config.Data.DelimiterRune(),
		Encoding:  config.Data.Encoding,
	})

	ds, err := cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	m.SetDatasetRows(ds.Len())

	logger.Info().
		Str("path", config.Data.Path).
		Int("rows", ds.Len()).
		Strs("segments", ds.Segments()).
		Msg("Dataset loaded")

	dashboardService := dashboard.NewService(cache, logger,
		dashboard.WithChartSize(config.Charts.Width, config.Charts.Height),
		dashboard.WithObserver(m.ObservePipeline),
	)

	mcpServer := server.NewMCPServer(
		"salesdash",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Metrics:          m,
		Cache:            cache,
		DashboardService: dashboardService,
		MCPServer:        mcpServer,
		StartupTime:      startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases resources held by the App. The dataset lives for the
// process, so there is nothing to flush.
func (a *App) Close() {
	a.Logger.Debug().Msg("App closed")
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	svc := a.DashboardService
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createListSegmentsTool(), handleListSegments(svc, logger))
	s.AddTool(createGetDashboardTool(), handleGetDashboard(svc, logger))
	s.AddTool(createGetSegmentBreakdownTool(), handleGetSegmentBreakdown(svc, logger))
	s.AddTool(createGetCategoryShareTool(), handleGetCategoryShare(svc, logger))
}
