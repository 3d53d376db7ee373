// Package main is the entry point for the servicemonitor CLI.
//
// Every command except services, validate and version opens the registry
// snapshot, reconciles it against the services file and then does its work.
// A broken services file is reported once and the command exits with code 1.
//
// Usage:
//
//	servicemonitor poll [--only=<id>...|--exclude=<id>...]
//	servicemonitor fetch [--refresh=5s] [--only=<id>...|--exclude=<id>...]
//	servicemonitor history [--only=<id>]
//	servicemonitor backup --filename=<file> [--format=snapshot|txt|csv]
//	servicemonitor restore --filename=<file> [--merge]
//	servicemonitor services
//	servicemonitor validate
//	servicemonitor version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configFile   string
	servicesFile string
	storagePath  string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// from leaking between executions.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "servicemonitor",
		Short: "Poll provider status pages and keep a history of what they report",
		Long: `servicemonitor polls the status pages of the services listed in a
services file and appends one line per service per round to a persisted
history.

Services file (one service per line):
  bitbucket|BitBucket|https://bitbucket.status.atlassian.com
  gitlab|GitLab|https://status.gitlab.com

Quick start:
  servicemonitor poll            # poll every service once
  servicemonitor fetch           # poll every 5s until interrupted
  servicemonitor history         # print everything recorded so far`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to YAML settings file")
	flags.StringVar(&opts.servicesFile, "services", "", "path to services file (overrides settings)")
	flags.StringVar(&opts.storagePath, "storage", "", "path to registry snapshot (overrides settings)")

	root.AddCommand(
		newPollCmd(opts),
		newFetchCmd(opts),
		newHistoryCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newServicesCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// newVersionCmd prints version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this servicemonitor binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "servicemonitor %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
