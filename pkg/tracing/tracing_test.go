package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var testSession = Session{AssetID: "bitcoin", Currency: "usd"}

func TestSetupDisabledByDefault(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		t.Fatal("exporter should not be created when tracing is disabled")
		return nil, nil
	}

	tr, err := Setup(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Exported() {
		t.Fatal("disabled tracing should not export")
	}

	_, span := tr.Tracer("coordinator").Start(context.Background(), "tracker.activate")
	defer span.End()
	if span.SpanContext().IsSampled() {
		t.Fatal("disabled tracing should not sample")
	}
}

func TestSetupEnabledWithStubExporter(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	stub := &stubExporter{}
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		stub.endpoint = endpoint
		return stub, nil
	}

	tr, err := Setup(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.Exported() {
		t.Fatal("expected exported tracing")
	}
	if stub.endpoint != "collector:4317" {
		t.Fatalf("expected endpoint to be propagated, got %s", stub.endpoint)
	}

	_, span := tr.Tracer("coingecko").Start(context.Background(), "coingecko.fetch-series")
	if !span.SpanContext().IsSampled() {
		t.Fatal("expected sampled span")
	}
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupExporterError(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return nil, errors.New("dial failed")
	}

	if _, err := Setup(context.Background(), testSession); err == nil {
		t.Fatal("expected exporter error")
	}
}

func TestSessionAttributes(t *testing.T) {
	attrs := testSession.attributes()
	found := map[string]string{}
	for _, kv := range attrs {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["tracker.asset"] != "bitcoin" || found["tracker.currency"] != "usd" {
		t.Fatalf("unexpected attributes: %v", found)
	}
	if found["service.name"] != serviceName {
		t.Fatalf("unexpected service name: %v", found["service.name"])
	}
}

type stubExporter struct {
	endpoint string
}

func (s *stubExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (s *stubExporter) Shutdown(ctx context.Context) error {
	return nil
}
