package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// PartitionMetricsMeterName is the meter of partition runs
	PartitionMetricsMeterName = "github.com/stacklok/asset-librarian/partition"

	// SyncMetricsMeterName is the meter of catalog syncs
	SyncMetricsMeterName = "github.com/stacklok/asset-librarian/sync"
)

// PartitionMetrics records partition run outcomes. A nil value records nothing.
type PartitionMetrics struct {
	runDuration   metric.Float64Histogram
	libraryAssets metric.Int64Gauge
	remaining     metric.Int64Gauge
}

// NewPartitionMetrics creates the partition instruments. A nil provider yields nil.
func NewPartitionMetrics(provider metric.MeterProvider) (*PartitionMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(PartitionMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"asset_librarian_partition_duration_seconds",
		metric.WithDescription("Duration of partition runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	libraryAssets, err := meter.Int64Gauge(
		"asset_librarian_library_assets",
		metric.WithDescription("Number of assets assigned to each library by the last run"),
		metric.WithUnit("{asset}"),
	)
	if err != nil {
		return nil, err
	}

	remaining, err := meter.Int64Gauge(
		"asset_librarian_remaining_assets",
		metric.WithDescription("Number of assets no library claimed in the last run"),
		metric.WithUnit("{asset}"),
	)
	if err != nil {
		return nil, err
	}

	return &PartitionMetrics{
		runDuration:   runDuration,
		libraryAssets: libraryAssets,
		remaining:     remaining,
	}, nil
}

// RecordRun records the duration of a partition run
func (m *PartitionMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordLibraryAssets records how many assets a library received
func (m *PartitionMetrics) RecordLibraryAssets(ctx context.Context, library string, count int) {
	if m == nil {
		return
	}
	m.libraryAssets.Record(ctx, int64(count),
		metric.WithAttributes(attribute.String("library", library)))
}

// RecordRemaining records the size of the unclaimed pool
func (m *PartitionMetrics) RecordRemaining(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.remaining.Record(ctx, int64(count))
}

// SyncMetrics records catalog sync outcomes. A nil value records nothing.
type SyncMetrics struct {
	syncDuration  metric.Float64Histogram
	catalogAssets metric.Int64Gauge
}

// NewSyncMetrics creates the sync instruments. A nil provider yields nil.
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"asset_librarian_sync_duration_seconds",
		metric.WithDescription("Duration of catalog syncs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	catalogAssets, err := meter.Int64Gauge(
		"asset_librarian_catalog_assets",
		metric.WithDescription("Number of assets in the synced catalog"),
		metric.WithUnit("{asset}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:  syncDuration,
		catalogAssets: catalogAssets,
	}, nil
}

// RecordSyncDuration records the duration of a sync for a catalog source type
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, source string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	))
}

// RecordCatalogAssets records the number of candidate assets in the catalog
func (m *SyncMetrics) RecordCatalogAssets(ctx context.Context, source string, count int) {
	if m == nil {
		return
	}
	m.catalogAssets.Record(ctx, int64(count),
		metric.WithAttributes(attribute.String("source", source)))
}
