// Package config loads the optional presenter.yaml runtime configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/errors"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "presenter.yaml"

// SchemaVersion is the newest configuration schema this build understands.
const SchemaVersion = "v1"

// Config represents presenter.yaml.
type Config struct {
	Version   string          `yaml:"version,omitempty"`
	Debug     bool            `yaml:"debug,omitempty"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// LogConfig controls the default error handler.
type LogConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// SchedulerConfig tunes the update scheduler.
type SchedulerConfig struct {
	MaxPasses int `yaml:"max_passes,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:   SchemaVersion,
		Scheduler: SchedulerConfig{MaxPasses: core.DefaultMaxPasses},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads presenter.yaml from dir if present, otherwise returns
// the defaults.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if stderrors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	cfg.Version = strings.TrimSpace(cfg.Version)
	if cfg.Version == "" {
		cfg.Version = SchemaVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the schema version and numeric limits.
func (c *Config) Validate() error {
	if !semver.IsValid(c.Version) {
		return invalid("version", fmt.Errorf("%q is not a semantic version", c.Version))
	}
	if semver.Major(c.Version) != semver.Major(SchemaVersion) {
		return invalid("version", fmt.Errorf("schema %s is not supported (want %s)", c.Version, SchemaVersion))
	}
	if c.Scheduler.MaxPasses < 1 {
		return invalid("scheduler.max_passes", fmt.Errorf("must be at least 1, got %d", c.Scheduler.MaxPasses))
	}
	return nil
}

func invalid(field string, err error) error {
	return &errors.LifecycleError{
		Op:   "config.Validate",
		Kind: errors.KindConfig,
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

// Apply installs the configuration: debug assertions, error handler
// verbosity and, when scheduler is non-nil, its pass limit.
func (c *Config) Apply(scheduler *core.Scheduler) {
	core.SetDebugMode(c.Debug)
	if h, ok := errors.Handler().(*errors.LogHandler); ok {
		h.Verbose = c.Log.Verbose
	}
	if scheduler != nil {
		scheduler.MaxPasses = c.Scheduler.MaxPasses
	}
}
