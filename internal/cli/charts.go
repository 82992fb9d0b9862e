package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/salesdash/internal/models"
	"github.com/bobmcallan/salesdash/internal/services/dashboard"
)

func newChartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts [segments|ratio|categories]...",
		Short: "Render dashboard charts as PNG files",
		Example: `  salesdash charts --dir out
  salesdash charts ratio --segments Corporate`,
		RunE: runCharts,
	}
	cmd.Flags().String("dir", ".", "output directory")
	cmd.Flags().StringSlice("segments", nil, "segments to include (default: all; empty for none)")
	return cmd
}

func runCharts(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	segments, err := selectionFlag(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")

	kinds := models.ChartKinds
	if len(args) > 0 {
		kinds = make([]models.ChartKind, 0, len(args))
		for _, arg := range args {
			k, err := models.ParseChartKind(arg)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	logger := cliCtx.App.Logger
	for _, kind := range kinds {
		png, err := cliCtx.App.DashboardService.RenderChart(cmd.Context(), kind, segments)
		if errors.Is(err, dashboard.ErrNoChartData) {
			logger.Warn().Str("chart", string(kind)).Msg("Nothing to draw, skipping chart")
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: no chartable data\n", kind)
			continue
		}
		if err != nil {
			return err
		}

		path := filepath.Join(dir, string(kind)+".png")
		if err := os.WriteFile(path, png, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
