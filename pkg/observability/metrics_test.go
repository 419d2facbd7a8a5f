package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/qcreport/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.DiscoveryMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	dm, err := observability.NewDiscoveryMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return dm, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)

			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}

			return total
		}
	}

	return 0
}

func TestDiscoveryMetrics_Record(t *testing.T) {
	t.Parallel()

	dm, reader := setupTestMeter(t)
	ctx := context.Background()

	dm.Visited(ctx, "filescan")
	dm.Visited(ctx, "filescan")
	dm.Matched(ctx, "filescan", "name")
	dm.Skipped(ctx, "filescan", "size")
	dm.Scanned(ctx, "filescan", 512)

	assert.Equal(t, int64(2), sumOf(t, reader, "qcreport.discovery.files.visited"))
	assert.Equal(t, int64(1), sumOf(t, reader, "qcreport.discovery.files.matched"))
	assert.Equal(t, int64(1), sumOf(t, reader, "qcreport.discovery.files.skipped"))
	assert.Equal(t, int64(512), sumOf(t, reader, "qcreport.discovery.bytes.scanned"))
}

func TestDiscoveryMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var dm *observability.DiscoveryMetrics

	assert.NotPanics(t, func() {
		dm.Visited(context.Background(), "m")
		dm.Matched(context.Background(), "m", "content")
		dm.Skipped(context.Background(), "m", "ignored")
		dm.Scanned(context.Background(), "m", 1)
	})
}

func TestInit_NoEndpointIsNoop(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(context.Background(), observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	dm, err := observability.NewDiscoveryMetrics(providers.Meter)
	require.NoError(t, err)

	dm.Visited(context.Background(), "m")

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
