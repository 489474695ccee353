package observability_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/observability"
)

func TestDefaultConfig_HasSensibleDefaults(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "vue2inula", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5, cfg.ShutdownTimeoutSec)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Empty(t, cfg.MetricsFile)
	assert.Empty(t, cfg.LogFile)
}

func TestFromSettings(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-team=web")

	logging := config.LoggingConfig{
		Level:      "debug",
		Format:     "json",
		File:       "/tmp/vue2inula.log",
		MaxSizeMB:  10,
		MaxBackups: 2,
		MaxAgeDays: 7,
	}
	telemetry := config.TelemetryConfig{
		OTLPEndpoint: "collector:4317",
		SampleRatio:  0.25,
		MetricsFile:  "/tmp/vue2inula.prom",
	}

	cfg, err := observability.FromSettings(logging, telemetry, observability.ModeWatch)
	require.NoError(t, err)

	assert.Equal(t, observability.ModeWatch, cfg.Mode)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "/tmp/vue2inula.log", cfg.LogFile)
	assert.Equal(t, 10, cfg.LogMaxSizeMB)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.SampleRatio, 0.0001)
	assert.Equal(t, "/tmp/vue2inula.prom", cfg.MetricsFile)
	assert.Equal(t, map[string]string{"x-team": "web"}, cfg.OTLPHeaders)
}

func TestFromSettings_BadLevel(t *testing.T) {
	t.Parallel()

	_, err := observability.FromSettings(config.LoggingConfig{Level: "loud"}, config.TelemetryConfig{}, observability.ModeCLI)
	require.Error(t, err)
}
