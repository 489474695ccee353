package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

func validConfig() config.Config {
	return config.Config{
		Conversion: config.ConversionConfig{
			AdapterSource:    "@openinula/vue-adapter",
			TargetExtension:  ".jsx",
			GlobalProperties: []string{"$api"},
			InstanceImports: map[string]symbols.InstanceImport{
				"$store": {Name: "useStore", Source: "@/store"},
			},
		},
		Migrate: config.MigrateConfig{Workers: 4},
		Logging: config.LoggingConfig{Level: "info", Format: "json", MaxSizeMB: 10},
		Telemetry: config.TelemetryConfig{
			SampleRatio: 0.5,
		},
	}
}

func TestValidate_ValidConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_ZeroConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{
			name:   "negative workers",
			mutate: func(c *config.Config) { c.Migrate.Workers = -1 },
			want:   config.ErrInvalidWorkers,
		},
		{
			name:   "negative cache size",
			mutate: func(c *config.Config) { c.Migrate.CacheSizeMB = -1 },
			want:   config.ErrInvalidCacheSize,
		},
		{
			name:   "extension without dot",
			mutate: func(c *config.Config) { c.Conversion.TargetExtension = "jsx" },
			want:   config.ErrInvalidTargetExtension,
		},
		{
			name:   "global without dollar",
			mutate: func(c *config.Config) { c.Conversion.GlobalProperties = []string{"api"} },
			want:   config.ErrInvalidGlobalProperty,
		},
		{
			name: "instance import without source",
			mutate: func(c *config.Config) {
				c.Conversion.InstanceImports["$i18n"] = symbols.InstanceImport{Name: "useI18n"}
			},
			want: config.ErrInvalidInstanceImport,
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			want:   config.ErrInvalidLogLevel,
		},
		{
			name:   "log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   config.ErrInvalidLogFormat,
		},
		{
			name:   "log rotation",
			mutate: func(c *config.Config) { c.Logging.MaxBackups = -2 },
			want:   config.ErrInvalidLogRotation,
		},
		{
			name:   "sample ratio",
			mutate: func(c *config.Config) { c.Telemetry.SampleRatio = 1.5 },
			want:   config.ErrInvalidSampleRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	opts := cfg.Conversion.EngineOptions()

	assert.Equal(t, "@openinula/vue-adapter", opts.AdapterSource)
	assert.Equal(t, ".jsx", opts.TargetExtension)
	assert.Equal(t, []string{"$api"}, opts.ExtraGlobalProperties)
	assert.Equal(t, "@/store", opts.InstanceImports["$store"].Source)

	opts.InstanceImports["$route"] = symbols.InstanceImport{Name: "useRoute", Source: "x"}
	assert.NotContains(t, cfg.Conversion.InstanceImports, "$route")
}
