package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/openInula/inula-sub000/pkg/observability"
)

func newFilteredProvider(logger *slog.Logger) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(filter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return tp, exporter
}

func TestAttributeFilter_AllowsKnownKeys(t *testing.T) {
	t.Parallel()

	tp, exporter := newFilteredProvider(nil)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.String("vue2inula.file", "App.vue"),
		attribute.Int("vue2inula.warnings", 2),
		attribute.String("error.type", "timeout"),
		attribute.String("stage", "template"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrMap(spans[0])
	assert.Equal(t, "App.vue", attrs["vue2inula.file"])
	assert.Equal(t, int64(2), attrs["vue2inula.warnings"])
	assert.Equal(t, "timeout", attrs["error.type"])
	assert.Equal(t, "template", attrs["stage"])
}

func TestAttributeFilter_StripsSourceAndUnknown(t *testing.T) {
	t.Parallel()

	tp, exporter := newFilteredProvider(nil)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.String("vue2inula.source", "<template><div/></template>"),
		attribute.String("convert.code", "function App() {}"),
		attribute.String("mcp.arguments", "{}"),
		attribute.String("user.id", "12345"),
		attribute.String("migrate.root", "src"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrMap(spans[0])

	assert.NotContains(t, attrs, "vue2inula.source")
	assert.NotContains(t, attrs, "convert.code")
	assert.NotContains(t, attrs, "mcp.arguments")
	assert.NotContains(t, attrs, "user.id")
	assert.Equal(t, "src", attrs["migrate.root"])
}

func TestAttributeFilter_WarnsWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	tp, _ := newFilteredProvider(logger)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attribute.String("vue2inula.code", "x"))
	span.End()

	assert.Contains(t, buf.String(), "vue2inula.code")
	assert.Contains(t, buf.String(), "blocked")
}

func spanAttrMap(s tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}

	return m
}
