// Package config loads sweeper's settings from an optional YAML file and
// SWEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	Preview  PreviewConfig  `yaml:"preview"`
	Chart    ChartConfig    `yaml:"chart"`
	Workers  int            `yaml:"workers"`
	Log      LogConfig      `yaml:"log"`
}

type OutputConfig struct {
	// Dir receives converted files. Empty means next to the input.
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

type CleaningConfig struct {
	RemoveDuplicates bool `yaml:"remove_duplicates"`
	FillMissing      bool `yaml:"fill_missing"`
	FillFirst        bool `yaml:"fill_first"`
}

type PreviewConfig struct {
	Rows int `yaml:"rows"`
}

type ChartConfig struct {
	Columns int `yaml:"columns"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Output:  OutputConfig{Format: "csv"},
		Preview: PreviewConfig{Rows: 5},
		Chart:   ChartConfig{Columns: 2},
		Workers: 4,
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/sweeper/config.yaml, falling back to the
// user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "sweeper", "config.yaml")
}

// Load reads path (or DefaultPath when empty), applies environment
// overrides and validates the result. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("config read: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SWEEPER_OUTPUT_DIR":    &c.Output.Dir,
		"SWEEPER_OUTPUT_FORMAT": &c.Output.Format,
		"SWEEPER_LOG_LEVEL":     &c.Log.Level,
		"SWEEPER_LOG_FORMAT":    &c.Log.Format,
		"SWEEPER_LOG_FILE":      &c.Log.File,
	}
	for env, dst := range strs {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SWEEPER_REMOVE_DUPLICATES": &c.Cleaning.RemoveDuplicates,
		"SWEEPER_FILL_MISSING":      &c.Cleaning.FillMissing,
		"SWEEPER_FILL_FIRST":        &c.Cleaning.FillFirst,
	}
	for env, dst := range bools {
		if v, ok := os.LookupEnv(env); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"SWEEPER_PREVIEW_ROWS":  &c.Preview.Rows,
		"SWEEPER_CHART_COLUMNS": &c.Chart.Columns,
		"SWEEPER_WORKERS":       &c.Workers,
	}
	for env, dst := range ints {
		if v, ok := os.LookupEnv(env); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = n
		}
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if _, err := types.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if c.Preview.Rows < 0 {
		errs = append(errs, fmt.Errorf("preview.rows must be >= 0, got %d", c.Preview.Rows))
	}
	if c.Chart.Columns < 1 {
		errs = append(errs, fmt.Errorf("chart.columns must be >= 1, got %d", c.Chart.Columns))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// TargetFormat returns the configured output format. Validate guarantees it
// parses.
func (c *Config) TargetFormat() types.Format {
	f, _ := types.ParseFormat(c.Output.Format)
	return f
}

func (c *Config) CleaningChoice() types.CleaningChoice {
	return types.CleaningChoice{
		RemoveDuplicates:   c.Cleaning.RemoveDuplicates,
		FillMissingNumeric: c.Cleaning.FillMissing,
		FillFirst:          c.Cleaning.FillFirst,
	}
}
