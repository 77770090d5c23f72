// Package observe provides application-wide observability primitives for
// Ordervox: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [Setup] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Ordervox metrics.
const meterName = "github.com/ordervox/ordervox"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// ResolveDuration tracks how long resolving one spoken item against
	// the catalog takes.
	ResolveDuration metric.Float64Histogram

	// BuildDuration tracks order document construction latency.
	BuildDuration metric.Float64Histogram

	// SubmitDuration tracks end-to-end order submission latency, including
	// the upstream call.
	SubmitDuration metric.Float64Histogram

	// --- Distribution histograms ---

	// MatchConfidence tracks the confidence of accepted item matches,
	// in [0, 1].
	MatchConfidence metric.Float64Histogram

	// OrderLines tracks the number of resolved lines per built order.
	OrderLines metric.Int64Histogram

	// --- Counters ---

	// OrdersSubmitted counts order submissions. Use with attribute:
	//   attribute.String("status", ...): "accepted", "rejected", "failed"
	OrdersSubmitted metric.Int64Counter

	// ItemsResolved counts item resolution outcomes. Use with attribute:
	//   attribute.String("status", ...): "matched", "unmatched"
	ItemsResolved metric.Int64Counter

	// TranscriptCorrections counts phrases repaired by the transcript
	// corrector before matching.
	TranscriptCorrections metric.Int64Counter

	// GatewayErrors counts upstream order-management API failures.
	GatewayErrors metric.Int64Counter

	// --- Gauges ---

	// InflightSubmits tracks the number of order submissions currently in
	// progress.
	InflightSubmits metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// in-process resolution plus one upstream HTTP round trip.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// confidenceBuckets defines histogram bucket boundaries for match scores.
var confidenceBuckets = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ResolveDuration, err = m.Float64Histogram("ordervox.resolve.duration",
		metric.WithDescription("Latency of resolving a spoken item against the catalog."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BuildDuration, err = m.Float64Histogram("ordervox.build.duration",
		metric.WithDescription("Latency of building a priced order document."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SubmitDuration, err = m.Float64Histogram("ordervox.submit.duration",
		metric.WithDescription("End-to-end order submission latency including the upstream call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MatchConfidence, err = m.Float64Histogram("ordervox.match.confidence",
		metric.WithDescription("Confidence of accepted item matches."),
		metric.WithExplicitBucketBoundaries(confidenceBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OrderLines, err = m.Int64Histogram("ordervox.order.lines",
		metric.WithDescription("Number of resolved lines per built order."),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.OrdersSubmitted, err = m.Int64Counter("ordervox.orders.submitted",
		metric.WithDescription("Total order submissions by status."),
	); err != nil {
		return nil, err
	}
	if met.ItemsResolved, err = m.Int64Counter("ordervox.items.resolved",
		metric.WithDescription("Total item resolution attempts by status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptCorrections, err = m.Int64Counter("ordervox.transcript.corrections",
		metric.WithDescription("Total phrases repaired by the transcript corrector."),
	); err != nil {
		return nil, err
	}
	if met.GatewayErrors, err = m.Int64Counter("ordervox.gateway.errors",
		metric.WithDescription("Total upstream order-management API failures."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.InflightSubmits, err = m.Int64UpDownCounter("ordervox.inflight_submits",
		metric.WithDescription("Number of order submissions currently in progress."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("ordervox.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSubmission records an order submission counter increment with its
// outcome status.
func (m *Metrics) RecordSubmission(ctx context.Context, status string) {
	m.OrdersSubmitted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordResolution records an item resolution attempt. Matched attempts also
// record the match confidence.
func (m *Metrics) RecordResolution(ctx context.Context, matched bool, confidence float64) {
	status := "matched"
	if !matched {
		status = "unmatched"
	}
	m.ItemsResolved.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	if matched {
		m.MatchConfidence.Record(ctx, confidence)
	}
}

// RecordGatewayError records an upstream API failure.
func (m *Metrics) RecordGatewayError(ctx context.Context) {
	m.GatewayErrors.Add(ctx, 1)
}
