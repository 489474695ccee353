// Package config provides YAML-based project configuration for vue2inula.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/openInula/inula-sub000/pkg/engine/directive"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

// Config is the top-level configuration struct for vue2inula.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Conversion ConversionConfig `mapstructure:"conversion"`
	Migrate    MigrateConfig    `mapstructure:"migrate"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ConversionConfig holds the per-file conversion knobs.
type ConversionConfig struct {
	AdapterSource    string                            `mapstructure:"adapter_source"`
	FrameworkSource  string                            `mapstructure:"framework_source"`
	TargetExtension  string                            `mapstructure:"target_extension"`
	GlobalProperties []string                          `mapstructure:"global_properties"`
	InstanceImports  map[string]symbols.InstanceImport `mapstructure:"instance_imports"`
	Tags             map[string]directive.TagRule      `mapstructure:"tags"`
	// TagsFile is a separate JSON or YAML tag map, validated against the tag schema.
	TagsFile string `mapstructure:"tags_file"`
}

// MigrateConfig holds batch migration settings.
type MigrateConfig struct {
	Workers   int      `mapstructure:"workers"`
	StateFile string   `mapstructure:"state_file"`
	Exclude   []string `mapstructure:"exclude"`
	// CacheSizeMB bounds the in-memory output cache used while watching.
	CacheSizeMB int `mapstructure:"cache_size_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// TelemetryConfig holds tracing and metrics export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("migrate.workers must be non-negative")
	// ErrInvalidCacheSize indicates a negative cache size.
	ErrInvalidCacheSize = errors.New("migrate.cache_size_mb must be non-negative")
	// ErrInvalidTargetExtension indicates an extension without a leading dot.
	ErrInvalidTargetExtension = errors.New("conversion.target_extension must start with a dot")
	// ErrInvalidGlobalProperty indicates a global property name without the $ prefix.
	ErrInvalidGlobalProperty = errors.New("conversion.global_properties entries must start with $")
	// ErrInvalidInstanceImport indicates an instance import with no hook or source.
	ErrInvalidInstanceImport = errors.New("conversion.instance_imports entries need name and source")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("logging.format must be json or text")
	// ErrInvalidLogRotation indicates a negative rotation setting.
	ErrInvalidLogRotation = errors.New("logging rotation settings must be non-negative")
	// ErrInvalidSampleRatio indicates a sample ratio out of range.
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

var (
	logLevels  = []string{"", "debug", "info", "warn", "error"}
	logFormats = []string{"", "json", "text"}
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	conversionErr := c.validateConversion()
	if conversionErr != nil {
		return conversionErr
	}

	if c.Migrate.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Migrate.CacheSizeMB < 0 {
		return ErrInvalidCacheSize
	}

	loggingErr := c.validateLogging()
	if loggingErr != nil {
		return loggingErr
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateConversion() error {
	if ext := c.Conversion.TargetExtension; ext != "" && !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidTargetExtension, ext)
	}

	for _, name := range c.Conversion.GlobalProperties {
		if !strings.HasPrefix(name, "$") {
			return fmt.Errorf("%w: %q", ErrInvalidGlobalProperty, name)
		}
	}

	for name, imp := range c.Conversion.InstanceImports {
		if imp.Name == "" || imp.Source == "" {
			return fmt.Errorf("%w: %q", ErrInvalidInstanceImport, name)
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return ErrInvalidLogRotation
	}

	return nil
}
