package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full, unfiltered dataset as CSV",
		Long: "export writes every row and column of the loaded dataset, unchanged.\n" +
			"Segment selection does not apply.",
		Example: `  salesdash export > sales_report.csv
  salesdash export -f sales_report.csv`,
		RunE: runExport,
	}
	cmd.Flags().StringP("file", "f", "", "output file (default: stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc := cliCtx.App.DashboardService

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return svc.Export(cmd.Context(), cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := svc.Export(cmd.Context(), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cliCtx.App.Logger.Info().Str("file", path).Msg("Dataset exported")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
