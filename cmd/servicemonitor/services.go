package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
)

func newServicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services in the services file",
		Long: `List the services configured in the services file.

The file is validated the same way poll and fetch do it, so a malformed line
is reported here too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(opts)
			if err != nil {
				return err
			}

			f, err := os.Open(cfg.ServicesFile)
			if err != nil {
				return fmt.Errorf("failed to open services file: %w", err)
			}
			defer func() { _ = f.Close() }()

			specs, err := servicemonitor.ReadConfig(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configured services:")
			for _, spec := range specs {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Service ID: %s\n", spec.Identifier)
				fmt.Fprintf(out, "Service Name: %s\n", spec.Name)
				fmt.Fprintf(out, "URL: %s\n", spec.URL)
			}
			return nil
		},
	}
}
