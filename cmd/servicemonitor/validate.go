package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate settings, services file and snapshot",
		Long: `Validate the settings, the services file and the registry snapshot
without polling anything.

It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Everything is valid
  1 - Something is invalid (error details printed to stderr)

Example:
  servicemonitor validate -c servicemonitor.yaml
  servicemonitor validate --services config.txt`,
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
				return fmt.Errorf("invalid services file: %w", err)
			}

			snapshot := "none yet"
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			reg, err := servicemonitor.Load(cfg.StoragePath, servicemonitor.WithLogger(quiet))
			switch {
			case err == nil:
				snapshot = fmt.Sprintf("%d services, %d history lines", reg.Len(), len(reg.History()))
			case errors.Is(err, fs.ErrNotExist):
			default:
				return fmt.Errorf("invalid snapshot: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config is valid!\n")
			fmt.Fprintf(out, "  Services file:    %s (%d services)\n", cfg.ServicesFile, len(specs))
			fmt.Fprintf(out, "  Storage:          %s (%s)\n", cfg.StoragePath, snapshot)
			fmt.Fprintf(out, "  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
			fmt.Fprintf(out, "  Request timeout:  %s\n", cfg.RequestTimeout.Duration())
			return nil
		},
	}
}
