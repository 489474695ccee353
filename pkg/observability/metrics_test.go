package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/openInula/inula-sub000/pkg/observability"
)

func newToolMetrics(t *testing.T) (*observability.ToolMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tm, err := observability.NewToolMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return tm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

// sumBy totals an int64 sum metric keyed by the value of one attribute.
func sumBy(t *testing.T, rm metricdata.ResourceMetrics, name, key string) map[string]int64 {
	t.Helper()

	m := findMetric(rm, name)
	require.NotNil(t, m, "%s metric not found", name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	out := make(map[string]int64)

	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] += dp.Value
	}

	return out
}

func TestToolMetrics_OutcomesAndWarnings(t *testing.T) {
	t.Parallel()

	tm, reader := newToolMetrics(t)
	ctx := context.Background()

	tm.Begin(ctx, "vue2inula_convert", 512).End(ctx, observability.OutcomeOK,
		[]string{"unknown-option", "unknown-option", "unsupported-form"})
	tm.Begin(ctx, "vue2inula_convert", 2048).End(ctx, observability.OutcomeRejected, nil)
	tm.Begin(ctx, "vue2inula_validate_tags", 0).End(ctx, observability.OutcomeOK, nil)

	rm := collectMetrics(t, reader)

	outcomes := sumBy(t, rm, "vue2inula.mcp.calls", "outcome")
	assert.Equal(t, map[string]int64{"ok": 2, "rejected": 1}, outcomes)

	tools := sumBy(t, rm, "vue2inula.mcp.calls", "tool")
	assert.Equal(t, map[string]int64{"vue2inula_convert": 2, "vue2inula_validate_tags": 1}, tools)

	codes := sumBy(t, rm, "vue2inula.mcp.warnings", "code")
	assert.Equal(t, map[string]int64{"unknown-option": 2, "unsupported-form": 1}, codes)

	sizes := findMetric(rm, "vue2inula.mcp.source.bytes")
	require.NotNil(t, sizes)

	hist, ok := sizes.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(2560), hist.DataPoints[0].Sum)
}

func TestToolMetrics_ActiveCallsReturnToZero(t *testing.T) {
	t.Parallel()

	tm, reader := newToolMetrics(t)
	ctx := context.Background()

	call := tm.Begin(ctx, "vue2inula_convert", 100)

	active := sumBy(t, collectMetrics(t, reader), "vue2inula.mcp.calls.active", "tool")
	assert.Equal(t, int64(1), active["vue2inula_convert"])

	call.End(ctx, observability.OutcomeFailed, nil)

	rm := collectMetrics(t, reader)
	active = sumBy(t, rm, "vue2inula.mcp.calls.active", "tool")
	assert.Equal(t, int64(0), active["vue2inula_convert"])
	assert.Equal(t, int64(1), sumBy(t, rm, "vue2inula.mcp.calls", "outcome")["failed"])
}

func TestToolMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var tm *observability.ToolMetrics

	call := tm.Begin(context.Background(), "vue2inula_convert", 10)
	assert.Nil(t, call)
	assert.NotPanics(t, func() { call.End(context.Background(), observability.OutcomeOK, []string{"x"}) })
}

func TestNewToolMetrics_WithDefaultProviders(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	tm, err := observability.NewToolMetrics(providers.Meter)
	require.NoError(t, err)
	assert.NotNil(t, tm)

	tm.Begin(context.Background(), "vue2inula_convert", 1).End(context.Background(), observability.OutcomeOK, nil)
}
