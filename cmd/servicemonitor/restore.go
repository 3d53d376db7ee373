package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
	"github.com/jpalmerr/servicemonitor/config"
)

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	var (
		filename string
		merge    bool
	)

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the registry from a snapshot backup",
		Long: `Restore the registry from a snapshot written by 'backup'.

By default the live registry is replaced by the backup: services, history
and storage location all come from the file. With --merge, only the backup's
history is appended to the live history.

A replace saves to the storage path recorded in the backup, not to the
configured one. A backup taken on another machine therefore leaves the
configured storage untouched (a warning is logged), and the restore fails
if the recorded path's directory does not exist here. Use --merge to keep
the configured storage.

Example:
  servicemonitor restore --filename backup.json
  servicemonitor restore --filename backup.json --merge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cfg, logger, err := openRegistry(opts)
			if err != nil {
				return err
			}

			incoming, err := servicemonitor.Load(filename, config.RegistryOptions(cfg, logger)...)
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			out := cmd.OutOrStdout()
			if merge {
				reg.MergeFrom(incoming)
				if err := reg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Successfully merged contents of file %s to storage\n", filename)
				return nil
			}

			reg.ReplaceWith(incoming)
			if err := reg.Save(); err != nil {
				return err
			}
			if reg.StoragePath() != cfg.StoragePath {
				logger.Warn("restored registry saves to a different location",
					"path", reg.StoragePath(),
					"configured", cfg.StoragePath,
				)
			}
			fmt.Fprintf(out, "Successfully set storage to contents of file %s\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "snapshot file to restore (required)")
	cmd.Flags().BoolVar(&merge, "merge", false, "append the backup's history instead of replacing the registry")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}
