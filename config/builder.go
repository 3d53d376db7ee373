package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jpalmerr/servicemonitor"
)

// RegistryOptions converts settings into SDK options. Extra options are
// appended, so callers can add callbacks or override the logger.
func RegistryOptions(cfg *Config, logger *slog.Logger, extra ...servicemonitor.Option) []servicemonitor.Option {
	opts := []servicemonitor.Option{
		servicemonitor.WithRequestTimeout(cfg.RequestTimeout.Duration()),
	}
	if logger != nil {
		opts = append(opts, servicemonitor.WithLogger(logger))
	}
	return append(opts, extra...)
}

// OpenRegistry loads the registry snapshot at cfg.StoragePath, or starts an
// empty registry there when no snapshot exists yet.
//
// A snapshot that exists but cannot be read is an error. The services file is
// not consulted; see [OpenReconciled].
func OpenRegistry(cfg *Config, logger *slog.Logger, extra ...servicemonitor.Option) (*servicemonitor.Registry, error) {
	opts := RegistryOptions(cfg, logger, extra...)

	reg, err := servicemonitor.Load(cfg.StoragePath, opts...)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if logger != nil {
		logger.Info("no snapshot found, starting fresh", "path", cfg.StoragePath)
	}
	return servicemonitor.New(cfg.StoragePath, opts...)
}

// OpenReconciled opens the registry like [OpenRegistry] and reconciles it
// against cfg.ServicesFile. Configuration errors are returned unwrapped so
// callers can report them as-is.
func OpenReconciled(cfg *Config, logger *slog.Logger, extra ...servicemonitor.Option) (*servicemonitor.Registry, error) {
	reg, err := OpenRegistry(cfg, logger, extra...)
	if err != nil {
		return nil, err
	}

	if err := reg.ReconcileFile(cfg.ServicesFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("services file %s not found: %w", cfg.ServicesFile, err)
		}
		return nil, err
	}
	return reg, nil
}
