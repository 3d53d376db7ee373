package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPollCmd(opts *rootOptions) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll every service once",
		Long: `Poll every configured service once, print one history line per
service and save the registry.

A service that cannot be reached or parsed still produces a line; its
bracketed status is the error.

Example:
  servicemonitor poll
  servicemonitor poll --only gitlab
  servicemonitor poll --exclude bitbucket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cfg, _, err := openRegistry(opts)
			if err != nil {
				return err
			}

			excluded, err := sel.excluded(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range reg.PollAll(cmd.Context(), excluded) {
				fmt.Fprintln(out, line)
			}

			return reg.Save()
		},
	}

	sel.register(cmd)
	return cmd
}
