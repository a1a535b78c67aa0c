package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal     = "codegraph.scan.commits.total"
	metricChunksTotal      = "codegraph.scan.files.total"
	metricChunkDuration    = "codegraph.scan.file.duration.seconds"
	metricCacheHitsTotal   = "codegraph.scan.cache.hits.total"
	metricCacheMissesTotal = "codegraph.scan.cache.misses.total"

	attrCache = "cache"
)

// ScanMetrics holds OTel instruments for a single scan run: the git
// history walk's commit count, the parse pool's per-file throughput
// and duration, and blob/diff cache effectiveness.
type ScanMetrics struct {
	commitsTotal metric.Int64Counter
	filesTotal   metric.Int64Counter
	fileDuration metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// ScanStats holds the statistics for a single completed scan,
// decoupled from the pipeline types that produced them.
type ScanStats struct {
	Commits         int64
	Files           int
	FileDurations   []time.Duration
	BlobCacheHits   int64
	BlobCacheMisses int64
	DiffCacheHits   int64
	DiffCacheMisses int64
}

// NewScanMetrics creates scan metric instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total commits analyzed"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	files, err := mt.Int64Counter(metricChunksTotal,
		metric.WithDescription("Total files parsed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunksTotal, err)
	}

	fileDur, err := mt.Float64Histogram(metricChunkDuration,
		metric.WithDescription("Per-file parse duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunkDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Cache hits by type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Cache misses by type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &ScanMetrics{
		commitsTotal: commits,
		filesTotal:   files,
		fileDuration: fileDur,
		cacheHits:    hits,
		cacheMisses:  misses,
	}, nil
}

// RecordRun records statistics for a completed scan. Safe to call on
// a nil receiver (no-op), so callers can wire it in unconditionally
// even when metrics are disabled.
func (am *ScanMetrics) RecordRun(ctx context.Context, stats ScanStats) {
	if am == nil {
		return
	}

	am.commitsTotal.Add(ctx, stats.Commits)
	am.filesTotal.Add(ctx, int64(stats.Files))

	for _, d := range stats.FileDurations {
		am.fileDuration.Record(ctx, d.Seconds())
	}

	blobAttrs := metric.WithAttributes(attribute.String(attrCache, "blob"))
	am.cacheHits.Add(ctx, stats.BlobCacheHits, blobAttrs)
	am.cacheMisses.Add(ctx, stats.BlobCacheMisses, blobAttrs)

	diffAttrs := metric.WithAttributes(attribute.String(attrCache, "diff"))
	am.cacheHits.Add(ctx, stats.DiffCacheHits, diffAttrs)
	am.cacheMisses.Add(ctx, stats.DiffCacheMisses, diffAttrs)
}
