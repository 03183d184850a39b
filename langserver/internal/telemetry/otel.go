package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/kitagry/copilotls/telemetry"

type otelSink struct {
	events      metric.Int64Counter
	measurement metric.Float64Histogram
}

// NewOTelSink turns events into an event counter and a measurement histogram.
func NewOTelSink(meter metric.Meter) (Sink, error) {
	events, err := meter.Int64Counter("copilotls.events",
		metric.WithDescription("Number of telemetry events by name and type"))
	if err != nil {
		return nil, fmt.Errorf("create events counter: %w", err)
	}

	measurement, err := meter.Float64Histogram("copilotls.measurement",
		metric.WithDescription("Numeric measurements attached to telemetry events"))
	if err != nil {
		return nil, fmt.Errorf("create measurement histogram: %w", err)
	}

	return &otelSink{events: events, measurement: measurement}, nil
}

func (o *otelSink) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	ctx := context.Background()

	attrs := []attribute.KeyValue{attribute.String("event", name)}
	if typ, ok := properties["type"]; ok {
		attrs = append(attrs, attribute.String("type", typ))
	}
	if status, ok := properties["status"]; ok {
		attrs = append(attrs, attribute.String("status", status))
	}
	o.events.Add(ctx, 1, metric.WithAttributes(attrs...))

	for key, value := range measurements {
		o.measurement.Record(ctx, value, metric.WithAttributes(
			attribute.String("event", name),
			attribute.String("key", key),
		))
	}
}

// Provider owns the meter provider that backs the OTel sink.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
}

// NewProvider exports metrics as JSON lines to w every interval.
func NewProvider(w io.Writer, interval time.Duration, serviceVersion string) (*Provider, error) {
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("init stdout metric exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "copilotls"),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	return &Provider{meterProvider: mp}, nil
}

func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(meterName)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}
