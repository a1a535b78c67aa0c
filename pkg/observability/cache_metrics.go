package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHitsGauge   = "codegraph.cache.hits"
	metricCacheMissesGauge = "codegraph.cache.misses"
)

// CacheStatsProvider is implemented by any cache whose hit/miss counts
// should be exported as gauges. No production type in this module
// implements it; only the test stub does.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges that, on each
// collection, read current hit/miss counts from blob and diff (either
// may be nil, in which case that series is simply omitted). Unlike
// REDMetrics' counters, cache stats are polled rather than pushed,
// since the caches already track their own running totals.
func RegisterCacheMetrics(mt metric.Meter, blob, diff CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHitsGauge,
		metric.WithDescription("Current cumulative cache hits by cache kind"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHitsGauge, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMissesGauge,
		metric.WithDescription("Current cumulative cache misses by cache kind"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMissesGauge, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		if blob != nil {
			blobAttrs := metric.WithAttributes(attribute.String(attrCache, "blob"))
			obs.ObserveInt64(hits, blob.CacheHits(), blobAttrs)
			obs.ObserveInt64(misses, blob.CacheMisses(), blobAttrs)
		}

		if diff != nil {
			diffAttrs := metric.WithAttributes(attribute.String(attrCache, "diff"))
			obs.ObserveInt64(hits, diff.CacheHits(), diffAttrs)
			obs.ObserveInt64(misses, diff.CacheMisses(), diffAttrs)
		}

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}
