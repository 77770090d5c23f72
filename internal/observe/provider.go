package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// setupConfig collects the knobs for [Setup].
type setupConfig struct {
	serviceName    string
	serviceVersion string
	spanExporter   sdktrace.SpanExporter
}

// SetupOption is a functional option for [Setup].
type SetupOption func(*setupConfig)

// WithServiceName overrides the service name reported in telemetry.
// The default is "ordervox".
func WithServiceName(name string) SetupOption {
	return func(c *setupConfig) {
		c.serviceName = name
	}
}

// WithServiceVersion sets the service version reported in telemetry.
func WithServiceVersion(version string) SetupOption {
	return func(c *setupConfig) {
		c.serviceVersion = version
	}
}

// WithSpanExporter sets the span exporter, typically OTLP in production.
// Without one, spans are recorded but never exported, which still gives
// every request a usable trace ID for correlation.
func WithSpanExporter(exp sdktrace.SpanExporter) SetupOption {
	return func(c *setupConfig) {
		c.spanExporter = exp
	}
}

// Telemetry owns the process-wide OpenTelemetry SDK providers created by
// [Setup].
type Telemetry struct {
	meters *sdkmetric.MeterProvider
	traces *sdktrace.TracerProvider
}

// Setup wires the OTel SDK and registers both providers globally: a meter
// provider backed by the Prometheus exporter bridge, so instruments recorded
// through the OTel API surface on the /metrics scrape endpoint, and a tracer
// provider with the configured span exporter. Call [Telemetry.Shutdown] on
// process exit.
func Setup(opts ...SetupOption) (*Telemetry, error) {
	cfg := setupConfig{serviceName: "ordervox"}
	for _, o := range opts {
		o(&cfg)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.spanExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.spanExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	return &Telemetry{meters: mp, traces: tp}, nil
}

// Shutdown flushes and closes both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.meters.Shutdown(ctx),
		t.traces.Shutdown(ctx),
	)
}
