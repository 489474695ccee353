package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/openInula/inula-sub000/pkg/engine"
)

// configName is the config file name without extension.
const configName = ".vue2inula"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for vue2inula settings.
const envPrefix = "VUE2INULA"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
// A configured tags file is loaded, validated and merged over inline tags.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	if cfg.Conversion.TagsFile != "" {
		tags, tagsErr := LoadTagsFile(cfg.Conversion.TagsFile)
		if tagsErr != nil {
			return nil, tagsErr
		}

		if cfg.Conversion.Tags == nil {
			cfg.Conversion.Tags = tags
		} else {
			maps.Copy(cfg.Conversion.Tags, tags)
		}
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("conversion.adapter_source", DefaultAdapterSource)
	viperCfg.SetDefault("conversion.framework_source", DefaultFrameworkSource)
	viperCfg.SetDefault("conversion.target_extension", DefaultTargetExtension)
	viperCfg.SetDefault("conversion.global_properties", []string{})

	viperCfg.SetDefault("migrate.workers", DefaultMigrateWorkers)
	viperCfg.SetDefault("migrate.state_file", DefaultMigrateStateFile)
	viperCfg.SetDefault("migrate.exclude", []string{"node_modules"})
	viperCfg.SetDefault("migrate.cache_size_mb", DefaultCacheSizeMB)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
	viperCfg.SetDefault("logging.max_size_mb", DefaultLogMaxSizeMB)
	viperCfg.SetDefault("logging.max_backups", DefaultLogMaxBackups)
	viperCfg.SetDefault("logging.max_age_days", DefaultLogMaxAgeDays)

	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
}

// EngineOptions maps the conversion section onto engine options.
func (c *ConversionConfig) EngineOptions() engine.Options {
	return engine.Options{
		Tags:                  maps.Clone(c.Tags),
		ExtraGlobalProperties: c.GlobalProperties,
		InstanceImports:       maps.Clone(c.InstanceImports),
		AdapterSource:         c.AdapterSource,
		FrameworkSource:       c.FrameworkSource,
		TargetExtension:       c.TargetExtension,
	}
}
