package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
)

// backup formats
const (
	formatSnapshot = "snapshot"
	formatText     = "txt"
	formatCSV      = "csv"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var (
		filename string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the registry or its history to a file",
		Long: `Write a backup of the registry.

Formats:
  snapshot  full registry snapshot, restorable with 'restore' (default)
  txt       one history line per row
  csv       service_id,date,time,status columns

Example:
  servicemonitor backup --filename backup.json
  servicemonitor backup --filename history.csv --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, _, err := openRegistry(opts)
			if err != nil {
				return err
			}

			var description string
			switch format {
			case formatSnapshot:
				if err := reg.SaveTo(filename); err != nil {
					return err
				}
				description = "a snapshot"
			case formatText:
				if err := writeFile(filename, reg.History(), servicemonitor.WriteText); err != nil {
					return err
				}
				description = "a txt file"
			case formatCSV:
				if err := writeFile(filename, reg.History(), servicemonitor.WriteCSV); err != nil {
					return err
				}
				description = "csv"
			default:
				return fmt.Errorf("unsupported format %q (expected snapshot, txt or csv)", format)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote to %s as %s.\n", filename, description)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "file to write (required)")
	cmd.Flags().StringVar(&format, "format", formatSnapshot, "backup format: snapshot, txt or csv")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

// writeFile creates path and writes lines to it with write.
func writeFile(path string, lines []string, write func(io.Writer, []string) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return write(f, lines)
}
