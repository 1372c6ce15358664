package observability

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type TelemetryOptions struct {
	// ExportLogs tees Logger into an OTLP log exporter as well.
	ExportLogs bool
}

// InitTelemetry starts the OTLP trace and metric providers, and the log
// provider when opts.ExportLogs is set. Exporters read the standard
// OTEL_EXPORTER_OTLP_* variables. The returned func stops every provider in
// reverse start order. Call after InitLogger.
func InitTelemetry(ctx context.Context, opts TelemetryOptions) (shutdown func(context.Context) error, err error) {
	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	var stops []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var errs error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = errors.Join(errs, stops[i](ctx))
		}
		return errs
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, shutdown(ctx))
		}
	}()

	starters := []func(context.Context, *resource.Resource) (func(context.Context) error, error){
		initTracing,
		initMetrics,
	}
	if opts.ExportLogs {
		starters = append(starters, initLogging)
	}

	for _, start := range starters {
		stop, err := start(ctx, res)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}

	return shutdown, nil
}

func initTracing(ctx context.Context, res *resource.Resource) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}

func initMetrics(ctx context.Context, res *resource.Resource) (func(context.Context) error, error) {
	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

func initLogging(ctx context.Context, res *resource.Resource) (func(context.Context) error, error) {
	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	// Records go to both the existing core and the OTLP endpoint.
	otelCore := otelzap.NewCore(ServiceName(), otelzap.WithLoggerProvider(provider))
	Logger = zap.New(zapcore.NewTee(Logger.Core(), otelCore))

	return provider.Shutdown, nil
}

func newResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName()),
		),
	)
}

// ServiceName is OTEL_SERVICE_NAME, or "calculator" when unset.
func ServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return "calculator"
}

// PrometheusHandler serves the collectors registered on
// prometheus.DefaultRegisterer.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// PrometheusHandlerFor serves only the collectors in reg.
func PrometheusHandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
