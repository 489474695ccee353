// Package observability provides OpenTelemetry tracing, metrics and
// structured logging for the vue2inula command modes.
package observability

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openInula/inula-sub000/pkg/config"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot convert run.
	ModeCLI AppMode = "cli"
	// ModeWatch is the long-running watch loop.
	ModeWatch AppMode = "watch"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "vue2inula"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment label.
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address.
	// Empty disables export.
	OTLPEndpoint string

	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio. Zero samples everything.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// LogFile enables a rotated log file next to stderr output.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// MetricsFile receives a Prometheus text exposition of all
	// metrics on shutdown.
	MetricsFile string

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// FromSettings builds a Config from the project logging and telemetry
// sections. The OTLP endpoint and headers fall back to the standard
// OTEL_EXPORTER_OTLP_* variables.
func FromSettings(logging config.LoggingConfig, telemetry config.TelemetryConfig, mode AppMode) (Config, error) {
	cfg := DefaultConfig()
	cfg.Mode = mode

	if logging.Level != "" {
		var level slog.Level

		err := level.UnmarshalText([]byte(logging.Level))
		if err != nil {
			return Config{}, fmt.Errorf("log level %q: %w", logging.Level, err)
		}

		cfg.LogLevel = level
	}

	cfg.LogJSON = strings.EqualFold(logging.Format, "json")
	cfg.LogFile = logging.File
	cfg.LogMaxSizeMB = logging.MaxSizeMB
	cfg.LogMaxBackups = logging.MaxBackups
	cfg.LogMaxAgeDays = logging.MaxAgeDays

	cfg.OTLPEndpoint = telemetry.OTLPEndpoint
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	cfg.OTLPInsecure = telemetry.OTLPInsecure || os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.OTLPHeaders = ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.SampleRatio = telemetry.SampleRatio
	cfg.MetricsFile = telemetry.MetricsFile

	return cfg, nil
}
