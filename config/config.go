// Package config provides YAML settings for the servicemonitor command.
//
// Settings only say where things live and how the tool behaves; the list of
// monitored services stays in the plain-text services file so it can be
// edited and reconciled on every run.
//
// Example settings file:
//
//	services_file: config.txt
//	storage_path: ${SERVICEMONITOR_HOME:-.}/service-monitor.json
//	refresh_interval: 5s
//	request_timeout: 10s
//	log_level: info
//	exclude: [gitlab]
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/servicemonitor"
)

// Defaults applied by [Parse] and [Default].
const (
	DefaultServicesFile    = "config.txt"
	DefaultStoragePath     = "service-monitor.json"
	DefaultRefreshInterval = 5 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultLogLevel        = "info"
)

// minRefreshInterval keeps the fetch loop from hammering status pages.
const minRefreshInterval = 1 * time.Second

// Config is the root settings structure.
//
// It maps directly to the YAML settings file. Use [Load] or [Parse] to read
// one, or [Default] when no file is given.
type Config struct {
	// ServicesFile is the identifier|name|url services config.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	ServicesFile string `yaml:"services_file"`

	// StoragePath is where the registry snapshot is kept.
	// Supports environment variable substitution.
	StoragePath string `yaml:"storage_path"`

	// RefreshInterval is the pause between rounds of the fetch loop.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// RequestTimeout bounds each status page request.
	RequestTimeout Duration `yaml:"request_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Exclude lists service identifiers skipped by poll and fetch unless
	// overridden on the command line.
	Exclude []string `yaml:"exclude"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the settings used when no settings file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML settings file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML settings data, applies defaults, expands environment
// variables in the path settings and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServicesFile == "" {
		c.ServicesFile = DefaultServicesFile
	}
	if c.StoragePath == "" {
		c.StoragePath = DefaultStoragePath
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = Duration(DefaultRefreshInterval)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// expandAndValidate expands environment variables and validates the settings.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.ServicesFile)
	if err != nil {
		return fmt.Errorf("services_file: %w", err)
	}
	c.ServicesFile = expanded

	expanded, err = expandEnvVars(c.StoragePath)
	if err != nil {
		return fmt.Errorf("storage_path: %w", err)
	}
	c.StoragePath = expanded

	return c.Validate()
}

// Validate checks settings that may also have been changed by command-line
// flags after parsing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServicesFile) == "" {
		return errors.New("services_file cannot be empty")
	}
	if strings.TrimSpace(c.StoragePath) == "" {
		return errors.New("storage_path cannot be empty")
	}

	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s",
			minRefreshInterval, c.RefreshInterval.Duration())
	}
	if c.RequestTimeout.Duration() <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout.Duration())
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	for i, id := range c.Exclude {
		if _, err := servicemonitor.ParseKind(id); err != nil {
			return fmt.Errorf("exclude[%d]: %w", i, err)
		}
	}

	return nil
}

// ExcludedKinds returns Exclude as service kinds. Call after [Config.Validate].
func (c *Config) ExcludedKinds() []servicemonitor.Kind {
	kinds := make([]servicemonitor.Kind, 0, len(c.Exclude))
	for _, id := range c.Exclude {
		if k, err := servicemonitor.ParseKind(id); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
	}
}
