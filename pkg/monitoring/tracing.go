package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP gRPC collector address; empty disables export
	Endpoint     string
	Insecure     bool
	SamplingRate float64
}

// TracingManager handles distributed tracing
type TracingManager struct {
	tracer     trace.Tracer
	config     TracingConfig
	provider   *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
}

// NewTracingManager creates a tracing manager exporting over OTLP gRPC, or a
// no-op manager when no endpoint is configured
func NewTracingManager(ctx context.Context, config TracingConfig) (*TracingManager, error) {
	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)

	if config.Endpoint == "" {
		return NewNoopTracingManager(config.ServiceName), nil
	}

	endpoint := strings.TrimPrefix(config.Endpoint, "grpc://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
		attribute.String("deployment.environment", config.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SamplingRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	return &TracingManager{
		tracer:     tp.Tracer(config.ServiceName),
		config:     config,
		provider:   tp,
		propagator: propagator,
	}, nil
}

// NewNoopTracingManager returns a manager whose spans are never recorded
func NewNoopTracingManager(serviceName string) *TracingManager {
	return &TracingManager{
		tracer: noop.NewTracerProvider().Tracer(serviceName),
		config: TracingConfig{ServiceName: serviceName},
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// StartSpan starts a new span
func (tm *TracingManager) StartSpan(ctx context.Context, operationName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, operationName, opts...)
}

// StartHTTPSpan starts a server span for an HTTP request
func (tm *TracingManager) StartHTTPSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, fmt.Sprintf("%s %s", method, route),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		),
	)
}

// StartGenerationSpan starts a client span around a model or proxy call
func (tm *TracingManager) StartGenerationSpan(ctx context.Context, mode string, transcriptLen int) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "note.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("generation.mode", mode),
			attribute.Int("generation.transcript_len", transcriptLen),
		),
	)
}

// ExtractTraceContext extracts trace context from incoming headers
func (tm *TracingManager) ExtractTraceContext(ctx context.Context, headers http.Header) context.Context {
	return tm.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectTraceContext injects trace context into outgoing headers
func (tm *TracingManager) InjectTraceContext(ctx context.Context, headers http.Header) {
	tm.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// TraceIDFromContext returns the trace ID of the active span, if any
func (tm *TracingManager) TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Shutdown flushes and stops the exporter
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider == nil {
		return nil
	}
	return tm.provider.Shutdown(ctx)
}
