// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"fmt"
	"io"

	"orderflow/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter names accepted by InitTracerProvider.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterJaeger = "jaeger"
)

// Options selects where finished spans go.
type Options struct {
	ServiceName string
	// Exporter is one of ExporterNone, ExporterStdout or ExporterJaeger.
	Exporter string
	// JaegerEndpoint is the collector URL, required for ExporterJaeger.
	JaegerEndpoint string
	// Output receives the spans of ExporterStdout.
	Output io.Writer
}

// InitTracerProvider builds a tracer provider for opts and registers it as
// the global provider together with the TraceContext and Baggage
// propagators. With ExporterNone spans are sampled and propagated but not
// exported. The caller owns the provider and must Shutdown it on exit so
// batched spans are flushed.
func InitTracerProvider(opts Options) (*sdktrace.TracerProvider, error) {
	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
		)),
	}

	exporter, err := newExporter(opts)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

func newExporter(opts Options) (sdktrace.SpanExporter, error) {
	switch opts.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		var exporterOpts []stdouttrace.Option
		if opts.Output != nil {
			exporterOpts = append(exporterOpts, stdouttrace.WithWriter(opts.Output))
		}
		exporter, err := stdouttrace.New(exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("create stdout span exporter: %w", err)
		}
		return exporter, nil
	case ExporterJaeger:
		if opts.JaegerEndpoint == "" {
			return nil, errs.NewValueIsRequiredError("OTEL_EXPORTER_JAEGER_ENDPOINT")
		}
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("create jaeger span exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("TRACING_EXPORTER",
			fmt.Errorf("%q is not one of %s, %s, %s", opts.Exporter, ExporterNone, ExporterStdout, ExporterJaeger))
	}
}
