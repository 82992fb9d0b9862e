package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/models"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs, segment totals and category profit share",
		Example: `  salesdash summary
  salesdash summary --segments Consumer,Corporate
  salesdash summary --segments "" -o json`,
		RunE: runSummary,
	}
	cmd.Flags().StringSlice("segments", nil, "segments to include (default: all; empty for none)")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	segments, err := selectionFlag(cmd)
	if err != nil {
		return err
	}

	d, err := cliCtx.App.DashboardService.Dashboard(cmd.Context(), segments)
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, d)
	}
	return writeSummary(cmd.OutOrStdout(), d)
}

// writeSummary renders the dashboard as aligned plain text.
func writeSummary(out io.Writer, d *models.Dashboard) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	selection := "(none)"
	if len(d.Selection) > 0 {
		selection = strings.Join(d.Selection, ", ")
	}
	fmt.Fprintf(tw, "Segments:\t%s\n", selection)
	fmt.Fprintf(tw, "Rows:\t%d\n", d.RowCount)
	fmt.Fprintf(tw, "Total Sales:\t%s\n", common.FormatMoney(d.KPIs.TotalSales))
	fmt.Fprintf(tw, "Total Profit:\t%s\n", common.FormatMoney(d.KPIs.TotalProfit))
	fmt.Fprintf(tw, "Profit Margin:\t%s\n", common.FormatPercent(d.KPIs.ProfitMarginPct))

	if len(d.Segments) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SEGMENT\tSALES\tPROFIT\tSALES/PROFIT")
		for _, s := range d.Segments {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				s.Segment,
				common.FormatMoney(s.SalesSum),
				common.FormatMoney(s.ProfitSum),
				common.FormatRatio(s.SalesToProfitRatio))
		}
	}

	if len(d.Categories) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CATEGORY\tPROFIT\tSHARE")
		for _, c := range d.Categories {
			fmt.Fprintf(tw, "%s\t%s\t%s\n",
				c.Category,
				common.FormatMoney(c.ProfitSum),
				common.FormatPercent(c.SharePct))
		}
	}

	return tw.Flush()
}
