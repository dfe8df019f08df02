package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FeedMetrics holds feed pagination metrics
type FeedMetrics struct {
	pageRequests      metric.Int64Counter
	fetchFailures     metric.Int64Counter
	fetchDuration     metric.Float64Histogram
	duplicatesDropped metric.Int64Counter
	debounceCollapsed metric.Int64Counter
	activeSessions    metric.Int64UpDownCounter
}

// NewFeedMetrics creates feed metrics instruments on the global meter provider
func NewFeedMetrics() (*FeedMetrics, error) {
	meter := otel.Meter(instrumentationName)

	pageRequests, err := meter.Int64Counter(
		"photofeed.page.requests",
		metric.WithDescription("Total number of page fetches dispatched"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	fetchFailures, err := meter.Int64Counter(
		"photofeed.page.failures",
		metric.WithDescription("Total number of failed page fetches"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"photofeed.page.duration",
		metric.WithDescription("Page fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	duplicatesDropped, err := meter.Int64Counter(
		"photofeed.photos.duplicates",
		metric.WithDescription("Photos dropped because their id was already in the feed"),
		metric.WithUnit("{photos}"),
	)
	if err != nil {
		return nil, err
	}

	debounceCollapsed, err := meter.Int64Counter(
		"photofeed.debounce.collapsed",
		metric.WithDescription("Scroll triggers superseded inside a debounce window"),
		metric.WithUnit("{triggers}"),
	)
	if err != nil {
		return nil, err
	}

	activeSessions, err := meter.Int64UpDownCounter(
		"photofeed.sessions.active",
		metric.WithDescription("Number of open feed sessions"),
		metric.WithUnit("{sessions}"),
	)
	if err != nil {
		return nil, err
	}

	return &FeedMetrics{
		pageRequests:      pageRequests,
		fetchFailures:     fetchFailures,
		fetchDuration:     fetchDuration,
		duplicatesDropped: duplicatesDropped,
		debounceCollapsed: debounceCollapsed,
		activeSessions:    activeSessions,
	}, nil
}

func feedMode(query string) attribute.KeyValue {
	if query == "" {
		return attribute.String("feed.mode", "recent")
	}
	return attribute.String("feed.mode", "search")
}

// RecordPageRequest records a dispatched page fetch. Nil receivers are no-ops.
func (m *FeedMetrics) RecordPageRequest(ctx context.Context, query string, page int) {
	if m == nil {
		return
	}
	m.pageRequests.Add(ctx, 1, metric.WithAttributes(feedMode(query), Page(page)))
}

// RecordPageResult records the outcome of a page fetch
func (m *FeedMetrics) RecordPageResult(ctx context.Context, query string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(feedMode(query), attribute.Bool("success", err == nil))
	m.fetchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.fetchFailures.Add(ctx, 1, metric.WithAttributes(feedMode(query)))
	}
}

// RecordDuplicates records photos dropped by id dedup
func (m *FeedMetrics) RecordDuplicates(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.duplicatesDropped.Add(ctx, int64(n))
}

// RecordDebounceCollapsed records a superseded scroll trigger
func (m *FeedMetrics) RecordDebounceCollapsed(ctx context.Context) {
	if m == nil {
		return
	}
	m.debounceCollapsed.Add(ctx, 1)
}

// SessionOpened increments the active session gauge
func (m *FeedMetrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// SessionClosed decrements the active session gauge
func (m *FeedMetrics) SessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
