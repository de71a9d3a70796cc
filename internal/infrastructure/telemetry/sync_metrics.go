// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SyncMetrics tracks platform synchronization activity.
// It records how many resources each sync run wrote or skipped, how the
// platform fetches behave, and how often webhook subscriptions fail.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	resourcesSyncedTotal  *Counter
	resourcesSkippedTotal *Counter
	subscriptionFailures  *Counter
	tokenErrorsTotal      *Counter
	fetchRetriesTotal     *Counter
	fetchDuration         *Histogram
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	sm.resourcesSyncedTotal, err = NewCounter(
		cfg.Meter,
		"socialsync_resources_synced_total",
		"Total number of platform resources written during sync runs",
		"{resources}",
	)
	if err != nil {
		return nil, err
	}

	sm.resourcesSkippedTotal, err = NewCounter(
		cfg.Meter,
		"socialsync_resources_skipped_total",
		"Total number of platform resources skipped because another company owns them",
		"{resources}",
	)
	if err != nil {
		return nil, err
	}

	sm.subscriptionFailures, err = NewCounter(
		cfg.Meter,
		"socialsync_subscription_failures_total",
		"Total number of webhook subscription attempts that failed",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	sm.tokenErrorsTotal, err = NewCounter(
		cfg.Meter,
		"socialsync_token_errors_total",
		"Total number of platform token errors by classification",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}

	sm.fetchRetriesTotal, err = NewCounter(
		cfg.Meter,
		"socialsync_fetch_retries_total",
		"Total number of retried platform fetch requests",
		"{retries}",
	)
	if err != nil {
		return nil, err
	}

	sm.fetchDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "socialsync_platform_fetch_duration_seconds",
		Description: "Duration of platform resource fetches",
		Unit:        "s",
		Boundaries:  FetchDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordSynced records resources written for a company during a sync run.
func (sm *SyncMetrics) RecordSynced(ctx context.Context, companyID uuid.UUID, kind string, count int64) {
	if count <= 0 {
		return
	}
	sm.resourcesSyncedTotal.Add(ctx, count,
		AttrCompanyID.String(companyID.String()),
		AttrResourceKind.String(kind),
	)
}

// RecordSkipped records resources skipped for a company because they are
// already owned elsewhere.
func (sm *SyncMetrics) RecordSkipped(ctx context.Context, companyID uuid.UUID, kind string, count int64) {
	if count <= 0 {
		return
	}
	sm.resourcesSkippedTotal.Add(ctx, count,
		AttrCompanyID.String(companyID.String()),
		AttrResourceKind.String(kind),
	)
}

// RecordSubscriptionFailure records a failed webhook subscription attempt.
func (sm *SyncMetrics) RecordSubscriptionFailure(ctx context.Context, kind string) {
	sm.subscriptionFailures.Inc(ctx, AttrResourceKind.String(kind))
}

// RecordTokenError records a classified platform token error.
func (sm *SyncMetrics) RecordTokenError(ctx context.Context, companyID uuid.UUID, class string) {
	sm.tokenErrorsTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrErrorClass.String(class),
	)
}

// RecordFetchRetry records a retried platform fetch request.
func (sm *SyncMetrics) RecordFetchRetry(ctx context.Context, kind string) {
	sm.fetchRetriesTotal.Inc(ctx, AttrResourceKind.String(kind))
}

// RecordFetchDuration records how long a platform fetch took and whether it
// returned a partial result.
func (sm *SyncMetrics) RecordFetchDuration(ctx context.Context, kind string, d time.Duration, partial bool) {
	sm.fetchDuration.RecordDuration(ctx, d,
		AttrResourceKind.String(kind),
		AttrPartial.Bool(partial),
	)
}

// MetricsError represents an error from the metrics subsystem.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}
