// Package config defines the application configuration and loads it from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
)

// Config is the complete configuration of the application. It supports
// loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	// Extraction pipeline settings
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Output settings
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// ExtractConfig contains extraction pipeline settings.
type ExtractConfig struct {
	// Scale converts page points to pixels (2.0 is roughly 144 DPI).
	Scale float64 `mapstructure:"scale" yaml:"scale" json:"scale"`

	// MinVectorDimension is the minimum width/height in page points below
	// which a shape group is discarded.
	MinVectorDimension float64 `mapstructure:"min_vector_dimension" yaml:"min_vector_dimension" json:"min_vector_dimension"`

	// PageCoverage is the page fraction above which a clip is treated as
	// page-level.
	PageCoverage float64 `mapstructure:"page_coverage" yaml:"page_coverage" json:"page_coverage"`

	// Pages restricts extraction to a page range, e.g. "1-5,8". Empty
	// means all pages.
	Pages string `mapstructure:"pages" yaml:"pages" json:"pages"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	// Dir receives per-page artifact directories.
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`

	// Format selects the summary format, "text" or "json".
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// File receives the summary instead of stdout when set.
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Extract: ExtractConfig{
			Scale:              2.0,
			MinVectorDimension: 20,
			PageCoverage:       0.9,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "text",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Extract.Scale <= 0 {
		return fmt.Errorf("extract.scale must be positive, got %g", c.Extract.Scale)
	}
	if c.Extract.MinVectorDimension < 0 {
		return fmt.Errorf("extract.min_vector_dimension must not be negative, got %g",
			c.Extract.MinVectorDimension)
	}
	if c.Extract.PageCoverage <= 0 || c.Extract.PageCoverage > 1 {
		return fmt.Errorf("extract.page_coverage must be in (0,1], got %g", c.Extract.PageCoverage)
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output.format %q (must be text or json)", c.Output.Format)
	}

	return nil
}
