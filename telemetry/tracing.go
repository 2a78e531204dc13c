package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys set on store spans.
const (
	AttrOp      = attribute.Key("todo.op")
	AttrKey     = attribute.Key("todo.key")
	AttrTasks   = attribute.Key("todo.tasks")
	AttrDropped = attribute.Key("todo.dropped")
	AttrBytes   = attribute.Key("todo.bytes")
)

// Tracer wraps an OpenTelemetry tracer with task list helpers.
type Tracer struct {
	tracer trace.Tracer
	debug  bool // When true, include payload sizes in span attributes
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return NoopTracer()
	}
	return globalTracer
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
}

// NewTracerFromProvider creates a tracer from an explicit provider.
func NewTracerFromProvider(tp trace.TracerProvider, name string, debug bool) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(name),
		debug:  debug,
	}
}

// Debug returns whether debug mode is enabled.
func (t *Tracer) Debug() bool {
	return t.debug
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StoreSpanOptions contains the outcome of a store operation.
type StoreSpanOptions struct {
	Tasks   int
	Dropped int
	Bytes   int // Only included if debug=true
}

// StartStoreSpan starts a span for a load or persist of the list under key.
func (t *Tracer) StartStoreSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	ctx, span := t.StartSpan(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		AttrOp.String(op),
		AttrKey.String(key),
	)
	return ctx, span
}

// EndStoreSpan ends a store span with attributes.
func (t *Tracer) EndStoreSpan(span trace.Span, opts StoreSpanOptions, err error) {
	attrs := []attribute.KeyValue{
		AttrTasks.Int(opts.Tasks),
	}
	if opts.Dropped > 0 {
		attrs = append(attrs, AttrDropped.Int(opts.Dropped))
	}
	if t.debug && opts.Bytes > 0 {
		attrs = append(attrs, AttrBytes.Int(opts.Bytes))
	}

	span.SetAttributes(attrs...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
