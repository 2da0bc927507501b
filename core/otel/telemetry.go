// Package otel configures OpenTelemetry trace and metric export for the
// bridge and creates the spans the host leaks across the boundary.
package otel

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sync"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/wippyai/glide-bridge/errors"
)

const (
	DefaultServiceName = "glide-bridge"

	instrumentationName = "github.com/wippyai/glide-bridge"
)

// Config selects exporters and export cadence.
type Config struct {
	Traces           *Exporter
	Metrics          *Exporter
	ServiceName      string
	FlushInterval    time.Duration
	SamplePercentage uint32
}

// Option overrides parts of the export pipeline.
type Option func(*options)

type options struct {
	spanExporter sdktrace.SpanExporter
	metricReader sdkmetric.Reader
}

// WithSpanExporter replaces the exporter built from Config.Traces.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.spanExporter = exp
	}
}

// WithMetricReader replaces the periodic reader built from Config.Metrics.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) {
		o.metricReader = r
	}
}

// Telemetry owns the tracer and meter providers.
type Telemetry struct {
	tp           *sdktrace.TracerProvider
	mp           *sdkmetric.MeterProvider
	tracer       trace.Tracer
	spansCreated metric.Int64Counter
	files        []*os.File
	shutdownErr  error
	shutdownOnce sync.Once
}

// Init validates cfg and starts the export pipeline.
func Init(ctx context.Context, cfg Config, opts ...Option) (*Telemetry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	hasTraces := cfg.Traces != nil || o.spanExporter != nil
	hasMetrics := cfg.Metrics != nil || o.metricReader != nil
	if !hasTraces && !hasMetrics {
		return nil, errors.TelemetryConfig("At least one of traces or metrics must be provided for OpenTelemetry configuration.", nil)
	}
	if cfg.FlushInterval <= 0 {
		return nil, errors.TelemetryConfig(fmt.Sprintf("InvalidInput: flushIntervalMs must be a positive integer (got: %d)", cfg.FlushInterval.Milliseconds()), nil)
	}
	if cfg.SamplePercentage > 100 {
		return nil, errors.TelemetryConfig(fmt.Sprintf("InvalidInput: traces_sample_percentage must be between 0 and 100 (got: %d)", cfg.SamplePercentage), nil)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	res := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	t := &Telemetry{}
	if err := t.startTraces(ctx, cfg, o, res); err != nil {
		t.abort(ctx)
		return nil, err
	}
	if err := t.startMetrics(ctx, cfg, o, res); err != nil {
		t.abort(ctx)
		return nil, err
	}

	var meter metric.Meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	if t.mp != nil {
		meter = t.mp.Meter(instrumentationName)
	}
	counter, err := meter.Int64Counter("glide.spans.created",
		metric.WithDescription("Spans created on behalf of the host"))
	if err != nil {
		t.abort(ctx)
		return nil, errors.TelemetryConfig("cannot create span counter", err)
	}
	t.spansCreated = counter

	otelapi.SetErrorHandler(otelapi.ErrorHandlerFunc(func(err error) {
		Logger().Warn("opentelemetry export error", zap.Error(err))
	}))

	Logger().Info("opentelemetry initialised",
		zap.Bool("traces", hasTraces),
		zap.Bool("metrics", hasMetrics),
		zap.Uint32("sample_percentage", cfg.SamplePercentage),
		zap.Duration("flush_interval", cfg.FlushInterval))
	return t, nil
}

func (t *Telemetry) startTraces(ctx context.Context, cfg Config, o options, res *sdkresource.Resource) error {
	exp := o.spanExporter
	if exp == nil {
		if cfg.Traces == nil {
			t.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
			return nil
		}
		var err error
		exp, err = t.newSpanExporter(ctx, *cfg.Traces)
		if err != nil {
			return err
		}
	}

	t.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(cfg.FlushInterval)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SamplePercentage))),
	)
	t.tracer = t.tp.Tracer(instrumentationName)
	return nil
}

func (t *Telemetry) startMetrics(ctx context.Context, cfg Config, o options, res *sdkresource.Resource) error {
	reader := o.metricReader
	if reader == nil {
		if cfg.Metrics == nil {
			return nil
		}
		exp, err := t.newMetricExporter(ctx, *cfg.Metrics)
		if err != nil {
			return err
		}
		reader = sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.FlushInterval))
	}

	t.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return nil
}

func sampler(percentage uint32) sdktrace.Sampler {
	switch {
	case percentage >= 100:
		return sdktrace.AlwaysSample()
	case percentage == 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(float64(percentage) / 100)
	}
}

func (t *Telemetry) newSpanExporter(ctx context.Context, e Exporter) (sdktrace.SpanExporter, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch e.Protocol {
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(e.Endpoint)}
		if e.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(ctx, opts...)
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(e.Endpoint)}
		if e.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err = otlptracehttp.New(ctx, opts...)
	case ProtocolFile:
		f, ferr := t.openFile(e.Path)
		if ferr != nil {
			return nil, ferr
		}
		exp, err = stdouttrace.New(stdouttrace.WithWriter(f))
	default:
		return nil, errors.TelemetryConfig(fmt.Sprintf("unsupported trace exporter %s", e.Protocol), nil)
	}

	if err != nil {
		return nil, errors.TelemetryConfig("creating trace exporter", err)
	}
	return exp, nil
}

func (t *Telemetry) newMetricExporter(ctx context.Context, e Exporter) (sdkmetric.Exporter, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)

	cumulative := func(sdkmetric.InstrumentKind) metricdata.Temporality {
		return metricdata.CumulativeTemporality
	}

	switch e.Protocol {
	case ProtocolGRPC:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(e.Endpoint),
			otlpmetricgrpc.WithTemporalitySelector(cumulative),
		}
		if e.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err = otlpmetricgrpc.New(ctx, opts...)
	case ProtocolHTTP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(e.Endpoint),
			otlpmetrichttp.WithTemporalitySelector(cumulative),
		}
		if e.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	case ProtocolFile:
		f, ferr := t.openFile(e.Path)
		if ferr != nil {
			return nil, ferr
		}
		exp, err = stdoutmetric.New(
			stdoutmetric.WithWriter(f),
			stdoutmetric.WithTemporalitySelector(cumulative),
		)
	default:
		return nil, errors.TelemetryConfig(fmt.Sprintf("unsupported metric exporter %s", e.Protocol), nil)
	}

	if err != nil {
		return nil, errors.TelemetryConfig("creating metric exporter", err)
	}
	return exp, nil
}

func (t *Telemetry) openFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.TelemetryConfig(fmt.Sprintf("cannot open %s", path), err)
	}
	t.files = append(t.files, f)
	return f, nil
}

func (t *Telemetry) abort(ctx context.Context) {
	_ = t.Shutdown(ctx)
}

// NewSpan starts a root span. A nil Telemetry yields a span that records
// nothing.
func (t *Telemetry) NewSpan(name string) *Span {
	if t == nil {
		return newSpan(context.Background(), tracenoop.NewTracerProvider().Tracer(instrumentationName), name, nil)
	}
	return newSpan(context.Background(), t.tracer, name, t.spansCreated)
}

// ForceFlush exports everything buffered.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	var firstErr error
	if t.tp != nil {
		if err := t.tp.ForceFlush(ctx); err != nil {
			firstErr = err
		}
	}
	if t.mp != nil {
		if err := t.mp.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown flushes and stops both providers. Later calls return the first
// result.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		var errs []error
		if t.tp != nil {
			if err := t.tp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider: %w", err))
			}
		}
		if t.mp != nil {
			if err := t.mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter provider: %w", err))
			}
		}
		for _, f := range t.files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			t.shutdownErr = fmt.Errorf("telemetry shutdown: %w", stderrors.Join(errs...))
		}
	})
	return t.shutdownErr
}
