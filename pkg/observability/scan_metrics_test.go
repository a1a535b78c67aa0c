package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/codegraph-dev/codegraph/pkg/observability"
)

func TestScanMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	sm, err := observability.NewScanMetrics(meter)
	require.NoError(t, err)

	sm.RecordRun(context.Background(), observability.ScanStats{
		Commits:         42,
		Files:           10,
		FileDurations:   []time.Duration{5 * time.Millisecond, 10 * time.Millisecond},
		BlobCacheHits:   3,
		BlobCacheMisses: 1,
		DiffCacheHits:   2,
		DiffCacheMisses: 0,
	})

	rm := collectMetrics(t, reader)

	commits := findMetric(rm, "codegraph.scan.commits.total")
	require.NotNil(t, commits, "codegraph.scan.commits.total metric not found")

	files := findMetric(rm, "codegraph.scan.files.total")
	require.NotNil(t, files, "codegraph.scan.files.total metric not found")

	duration := findMetric(rm, "codegraph.scan.file.duration.seconds")
	require.NotNil(t, duration, "codegraph.scan.file.duration.seconds metric not found")
}

func TestScanMetrics_NilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var sm *observability.ScanMetrics

	require.NotPanics(t, func() {
		sm.RecordRun(context.Background(), observability.ScanStats{Commits: 1})
	})
}
