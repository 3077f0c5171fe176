/*
Package otelx installs the global OpenTelemetry tracer provider used by
the Webhook Surface's otelgin middleware (ground:
internal/observability/otel.go's InitOTel, trimmed to the OTLP-over-HTTP
exporter already in go.mod — no stdout fallback exporter, since that
package isn't part of this module's stack). The LLM Client creates no
spans of its own. Tracing is opt-in: with no OTEL_EXPORTER_OTLP_ENDPOINT
set, Init is a no-op and returns a shutdown func that does nothing.
*/
package otelx

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/ivrline/callnav/internal/platform/envutil"
	"github.com/ivrline/callnav/internal/platform/logger"
)

var (
	initOnce sync.Once
	shutdown = func(context.Context) error { return nil }
)

// Init configures the global tracer provider from OTEL_* environment
// variables. Call once at process startup; the returned func should run
// on shutdown to flush pending spans.
func Init(ctx context.Context, log *logger.Logger) func(context.Context) error {
	initOnce.Do(func() {
		endpoint := strings.TrimSpace(envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log))
		if endpoint == "" {
			return
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String("callnav"),
		))
		if err != nil && log != nil {
			log.Warn("otel resource init failed (continuing without tracing)", "error", err)
			return
		}

		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil && log != nil {
			log.Warn("otel exporter init failed (continuing without tracing)", "error", err)
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		))
		shutdown = tp.Shutdown
		if log != nil {
			log.Info("otel tracing initialized", "endpoint", endpoint)
		}
	})
	return shutdown
}
