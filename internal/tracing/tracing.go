package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/psantana5/timethis/internal/report"
)

// Config holds the tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // host:port of an OTLP/HTTP collector, empty disables export
}

// Provider wraps the OpenTelemetry tracer provider
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Init builds a provider. Without an endpoint spans are created but never exported.
func Init(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "timethis"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)

	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	return &Provider{
		tp:     tp,
		tracer: tp.Tracer(cfg.ServiceName),
	}, nil
}

// RecordResult emits one span spanning the measured window of r. The span is
// built from the recorded timestamps after the fact, so tracing never runs
// inside the timed window.
func (p *Provider) RecordResult(ctx context.Context, r *report.Result) {
	_, span := p.tracer.Start(ctx, "measure "+r.Label,
		trace.WithTimestamp(r.StartTime),
		trace.WithAttributes(
			attribute.String("timethis.id", r.ID),
			attribute.String("timethis.label", r.Label),
			attribute.String("timethis.mode", string(r.Mode)),
			attribute.Int64("timethis.loops", int64(r.Loops)),
			attribute.String("timethis.command", r.Command),
		),
	)

	if r.Failed() {
		span.SetStatus(codes.Error, r.Error)
		span.SetAttributes(attribute.Int("timethis.exit_code", r.ExitCode))
	} else {
		span.SetAttributes(attribute.Int64("timethis.duration_ns", int64(r.Duration)))
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(r.EndTime))
}

// Shutdown flushes pending spans
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}
