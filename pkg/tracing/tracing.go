package tracing

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "price-tracker"
	serviceVersion = "1.0.0"
)

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// Session identifies what a tracker run is watching. It is attached to
// every exported span as resource attributes.
type Session struct {
	AssetID  string
	Currency string
}

func (s Session) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
		attribute.String("tracker.asset", s.AssetID),
		attribute.String("tracker.currency", s.Currency),
	}
}

// Tracing owns the tracer provider for one session and hands out a
// tracer per component, named "price-tracker/<component>".
type Tracing struct {
	tp       *sdktrace.TracerProvider
	exported bool
}

// Disabled returns a Tracing that samples nothing and exports nothing.
func Disabled(s Session) *Tracing {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.NeverSample()),
		sdktrace.WithResource(resource.NewSchemaless(s.attributes()...)),
	)
	return &Tracing{tp: tp}
}

// Setup installs the global tracer provider. Spans are only exported
// when TRACING_ENABLED=true, to OTEL_EXPORTER_OTLP_ENDPOINT.
func Setup(ctx context.Context, s Session) (*Tracing, error) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "true") {
		t := Disabled(s)
		otel.SetTracerProvider(t.tp)
		return t, nil
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	exporter, err := newTraceExporter(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(s.attributes()...))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Tracing{tp: tp, exported: true}, nil
}

func (t *Tracing) Tracer(component string) trace.Tracer {
	return t.tp.Tracer(serviceName + "/" + component)
}

// Exported reports whether spans leave the process.
func (t *Tracing) Exported() bool { return t.exported }

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.tp.Shutdown(ctx)
}
