package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/servicemonitor"
	"github.com/jpalmerr/servicemonitor/config"
)

// loadSettings reads the settings file named by --config, or the defaults
// when none is given, and applies the --services and --storage overrides.
func loadSettings(opts *rootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("invalid settings: %w", err)
		}
		cfg = loaded
	}

	if opts.servicesFile != "" {
		cfg.ServicesFile = opts.servicesFile
	}
	if opts.storagePath != "" {
		cfg.StoragePath = opts.storagePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// newLogger creates a JSON logger on stderr at the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// openRegistry loads settings, then opens and reconciles the registry.
func openRegistry(opts *rootOptions, extra ...servicemonitor.Option) (*servicemonitor.Registry, *config.Config, *slog.Logger, error) {
	cfg, err := loadSettings(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)

	reg, err := config.OpenReconciled(cfg, logger, extra...)
	if err != nil {
		return nil, nil, nil, err
	}
	return reg, cfg, logger, nil
}

// selection is the --only / --exclude pair shared by poll and fetch.
type selection struct {
	only    []string
	exclude []string
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&s.only, "only", nil, "poll only these service identifiers")
	cmd.Flags().StringSliceVar(&s.exclude, "exclude", nil, "skip these service identifiers")
	cmd.MarkFlagsMutuallyExclusive("only", "exclude")
}

// excluded resolves the flags into the kinds to skip. --only wins over
// --exclude, which wins over the settings file.
func (s *selection) excluded(cfg *config.Config) ([]servicemonitor.Kind, error) {
	if len(s.only) > 0 {
		wanted, err := parseKinds(s.only)
		if err != nil {
			return nil, fmt.Errorf("--only: %w", err)
		}
		var out []servicemonitor.Kind
		for _, k := range servicemonitor.SupportedKinds() {
			if !slices.Contains(wanted, k) {
				out = append(out, k)
			}
		}
		return out, nil
	}

	if len(s.exclude) > 0 {
		kinds, err := parseKinds(s.exclude)
		if err != nil {
			return nil, fmt.Errorf("--exclude: %w", err)
		}
		return kinds, nil
	}

	return cfg.ExcludedKinds(), nil
}

func parseKinds(ids []string) ([]servicemonitor.Kind, error) {
	kinds := make([]servicemonitor.Kind, 0, len(ids))
	var errs []error
	for _, id := range ids {
		k, err := servicemonitor.ParseKind(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		kinds = append(kinds, k)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return kinds, nil
}
