// Package telemetry wires OpenTelemetry tracing and metrics for the console
// and the identity service.
//
// Instrumented code always goes through Tracer and Meter, which resolve the
// global providers at call time. Until Setup installs SDK providers they
// are no-ops.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/videotec/internal/timex"
)

// InstrumentationName names the tracer and meter of this module.
const InstrumentationName = "github.com/dmitrijs2005/videotec"

type Config struct {
	// OTLPEndpoint is an OTLP/HTTP traces URL, e.g.
	// http://localhost:4318/v1/traces. Empty disables export.
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// OTLPMetricsEndpoint is an OTLP/HTTP metrics URL, e.g.
	// http://localhost:4318/v1/metrics. Empty disables export.
	OTLPMetricsEndpoint string `json:"otlp_metrics_endpoint" yaml:"otlp_metrics_endpoint" env:"OTLP_METRICS_ENDPOINT"`
	// MetricsInterval is how often metrics are pushed. Zero uses the SDK
	// default of one minute.
	MetricsInterval timex.Duration `json:"metrics_interval" yaml:"metrics_interval" env:"METRICS_INTERVAL"`
	ServiceName     string         `json:"service_name" yaml:"service_name" env:"SERVICE_NAME"`
}

type options struct {
	exporters []sdktrace.SpanExporter
	readers   []sdkmetric.Reader
}

type Option func(*options)

// WithSpanExporter adds a synchronous span exporter.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporters = append(o.exporters, exp) }
}

// WithMetricReader installs an SDK meter provider that feeds reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) { o.readers = append(o.readers, r) }
}

func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Setup installs global providers according to cfg and opts. The returned
// shutdown flushes and stops them; it is safe to call when nothing was
// installed.
func Setup(ctx context.Context, cfg Config, opts ...Option) (func(context.Context) error, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "videotec"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return shutdown, fmt.Errorf("create otlp exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exp))
	}
	for _, exp := range o.exporters {
		traceOpts = append(traceOpts, sdktrace.WithSyncer(exp))
	}
	if len(traceOpts) > 1 {
		tp := sdktrace.NewTracerProvider(traceOpts...)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	readers := o.readers
	if cfg.OTLPMetricsEndpoint != "" {
		exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTLPMetricsEndpoint))
		if err != nil {
			return shutdown, fmt.Errorf("create otlp metric exporter: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if cfg.MetricsInterval.Duration > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricsInterval.Duration))
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exp, readerOpts...))
	}
	if len(readers) > 0 {
		meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
		for _, r := range readers {
			meterOpts = append(meterOpts, sdkmetric.WithReader(r))
		}
		mp := sdkmetric.NewMeterProvider(meterOpts...)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return shutdown, nil
}
