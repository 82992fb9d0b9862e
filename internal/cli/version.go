package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/salesdash/internal/common"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no config or dataset
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "salesdash %s\nbuild: %s\ncommit: %s\n",
				common.GetVersion(), common.GetBuild(), common.GetGitCommit())
			return nil
		},
	}
}
