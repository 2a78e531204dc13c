package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer(debug bool) (*Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return NewTracerFromProvider(tp, "test", debug), rec
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestGetTracer_DefaultNoop(t *testing.T) {
	SetGlobalTracer(nil)
	tr := GetTracer()
	if tr == nil {
		t.Fatal("GetTracer returned nil")
	}
	// Should not panic
	_, span := tr.StartStoreSpan(context.Background(), "load", "todos.v1")
	tr.EndStoreSpan(span, StoreSpanOptions{Tasks: 1}, nil)
}

func TestSetGlobalTracer(t *testing.T) {
	tr, _ := newRecordingTracer(false)
	SetGlobalTracer(tr)
	defer SetGlobalTracer(nil)

	if GetTracer() != tr {
		t.Error("GetTracer did not return the global tracer")
	}
}

func TestStoreSpan_Attributes(t *testing.T) {
	tr, rec := newRecordingTracer(false)

	_, span := tr.StartStoreSpan(context.Background(), "load", "todos.v1")
	tr.EndStoreSpan(span, StoreSpanOptions{Tasks: 3, Dropped: 2, Bytes: 120}, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "store.load" {
		t.Errorf("expected name store.load, got %s", s.Name())
	}
	if s.SpanKind() != trace.SpanKindInternal {
		t.Errorf("expected internal span kind, got %v", s.SpanKind())
	}
	attrs := attrMap(s.Attributes())
	if attrs[AttrOp].AsString() != "load" {
		t.Errorf("todo.op = %v", attrs[AttrOp])
	}
	if attrs[AttrKey].AsString() != "todos.v1" {
		t.Errorf("todo.key = %v", attrs[AttrKey])
	}
	if attrs[AttrTasks].AsInt64() != 3 {
		t.Errorf("todo.tasks = %v", attrs[AttrTasks])
	}
	if attrs[AttrDropped].AsInt64() != 2 {
		t.Errorf("todo.dropped = %v", attrs[AttrDropped])
	}
	if _, ok := attrs[AttrBytes]; ok {
		t.Error("todo.bytes should only be set in debug mode")
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", s.Status().Code)
	}
}

func TestStoreSpan_DebugBytes(t *testing.T) {
	tr, rec := newRecordingTracer(true)

	_, span := tr.StartStoreSpan(context.Background(), "persist", "todos.v1")
	tr.EndStoreSpan(span, StoreSpanOptions{Tasks: 1, Bytes: 64}, nil)

	attrs := attrMap(rec.Ended()[0].Attributes())
	if attrs[AttrBytes].AsInt64() != 64 {
		t.Errorf("todo.bytes = %v", attrs[AttrBytes])
	}
	if _, ok := attrs[AttrDropped]; ok {
		t.Error("todo.dropped should be omitted when zero")
	}
}

func TestStoreSpan_Error(t *testing.T) {
	tr, rec := newRecordingTracer(false)

	_, span := tr.StartStoreSpan(context.Background(), "persist", "todos.v1")
	tr.EndStoreSpan(span, StoreSpanOptions{Tasks: 1}, errors.New("disk full"))

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected Error status, got %v", s.Status().Code)
	}
	if s.Status().Description != "disk full" {
		t.Errorf("unexpected status description %q", s.Status().Description)
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestInitProvider_NoEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	if _, err := InitProvider(context.Background(), ProviderConfig{}); err == nil {
		t.Error("expected error without endpoint")
	}
}

func TestInitProvider_UnknownProtocol(t *testing.T) {
	_, err := InitProvider(context.Background(), ProviderConfig{
		Endpoint: "localhost:4317",
		Protocol: "carrier-pigeon",
	})
	if err == nil {
		t.Error("expected error for unknown protocol")
	}
}

func TestInitProvider_Debug(t *testing.T) {
	for _, debug := range []bool{false, true} {
		p, err := InitProvider(context.Background(), ProviderConfig{
			Endpoint: "localhost:4317",
			Insecure: true,
			Debug:    debug,
		})
		if err != nil {
			t.Fatalf("InitProvider failed: %v", err)
		}
		if p.Tracer().Debug() != debug {
			t.Errorf("Tracer().Debug() = %v, want %v", p.Tracer().Debug(), debug)
		}
		if GetTracer() != p.Tracer() {
			t.Error("provider tracer was not installed globally")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		_ = p.Shutdown(ctx)
		cancel()
		SetGlobalTracer(nil)
	}
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://collector:4318")

	tests := []struct {
		configured string
		want       string
	}{
		{"localhost:4317", "localhost:4317"},
		{"http://localhost:4317", "localhost:4317"},
		{"", "collector:4318"},
	}
	for _, tt := range tests {
		got, err := resolveEndpoint(tt.configured)
		if err != nil {
			t.Fatalf("resolveEndpoint(%q) failed: %v", tt.configured, err)
		}
		if got != tt.want {
			t.Errorf("resolveEndpoint(%q) = %q, want %q", tt.configured, got, tt.want)
		}
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://")
	if _, err := resolveEndpoint(""); err == nil {
		t.Error("expected error for a bare scheme")
	}
}

func TestResolveServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	if got := resolveServiceName(""); got != DefaultServiceName {
		t.Errorf("default = %q, want %q", got, DefaultServiceName)
	}

	t.Setenv("OTEL_SERVICE_NAME", "todo-ci")
	if got := resolveServiceName(""); got != "todo-ci" {
		t.Errorf("from env = %q, want todo-ci", got)
	}
	if got := resolveServiceName("todo-dev"); got != "todo-dev" {
		t.Errorf("configured = %q, want todo-dev", got)
	}
}
