package main

import (
	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the recorded poll history",
		Long: `Print every history line recorded so far, oldest first.

With --only, print just the lines of one service.

Example:
  servicemonitor history
  servicemonitor history --only gitlab`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, _, err := openRegistry(opts)
			if err != nil {
				return err
			}

			lines := reg.History()
			if only != "" {
				kind, err := servicemonitor.ParseKind(only)
				if err != nil {
					return err
				}
				lines = reg.HistoryFor(kind)
			}

			return servicemonitor.WriteText(cmd.OutOrStdout(), lines)
		},
	}

	cmd.Flags().StringVar(&only, "only", "", "print only this service's history")
	return cmd
}
