package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
	"github.com/jpalmerr/servicemonitor/config"
)

const shutdownTimeout = 10 * time.Second

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var (
		sel     selection
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Poll continuously until interrupted",
		Long: `Poll every configured service, print the lines, save the registry,
wait for the refresh interval and repeat.

The loop runs until interrupted (Ctrl+C) or it receives SIGTERM; the registry
is saved once more on the way out.

Example:
  servicemonitor fetch
  servicemonitor fetch --refresh 30s --only bitbucket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printLine := servicemonitor.WithLineCallback(func(l servicemonitor.Line) {
				fmt.Fprintln(out, l.Text)
			})

			reg, cfg, logger, err := openRegistry(opts, printLine)
			if err != nil {
				return err
			}

			excluded, err := sel.excluded(cfg)
			if err != nil {
				return err
			}

			interval := cfg.RefreshInterval.Duration()
			if cmd.Flags().Changed("refresh") {
				interval = refresh
			}
			if interval <= 0 {
				return fmt.Errorf("--refresh must be positive, got %s", interval)
			}

			// cancel on SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errChan := make(chan error, 1)
			go func() {
				errChan <- reg.Watch(ctx, interval, excluded)
			}()

			select {
			case err := <-errChan:
				return err
			case <-ctx.Done():
			}

			// signal received, wait for the final save with a timeout
			select {
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("final save failed: %w", err)
				}
				logger.Info("shutdown complete")
				return nil
			case <-time.After(shutdownTimeout):
				logger.Warn("shutdown timed out",
					"timeout", shutdownTimeout.String(),
					"action", "forcing exit",
				)
				return nil
			}
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", config.DefaultRefreshInterval, "time between poll rounds (overrides settings)")
	sel.register(cmd)
	return cmd
}
