package tracer

import (
	"context"

	"pdfchat-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "pdfchat-backend"

type Options struct {
	Enabled  bool
	Endpoint string // host:port of an OTLP/HTTP collector
}

// InitTracer installs a global OTLP/HTTP tracer provider and returns its
// shutdown func. When disabled, or when the exporter cannot be created,
// it returns a no-op shutdown and the global no-op provider stays.
func InitTracer(ctx context.Context, opts Options, log logger.ILogger) func(context.Context) error {
	noop := func(context.Context) error { return nil }

	if !opts.Enabled {
		log.Info("Tracer", "OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)", nil)
		return noop
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("Tracer", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("Tracer", "OpenTelemetry tracer initialized", map[string]interface{}{
		"endpoint": opts.Endpoint,
	})
	return tp.Shutdown
}
