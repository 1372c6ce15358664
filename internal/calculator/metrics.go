package calculator

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	opsCounter   metric.Int64Counter
	opsHistogram metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
	historyGauge metric.Int64Gauge
)

// InitMetrics creates the calculator instruments on the global meter
// provider. Call once at startup, after observability.InitTelemetry.
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last evaluated expression"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	historyGauge, err = meter.Int64Gauge("calculator.history.entries",
		metric.WithDescription("Number of entries in the calculation history"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return fmt.Errorf("creating history gauge: %w", err)
	}

	return nil
}

// TrackHistorySize records the history length after every operation on m.
func TrackHistorySize(m *Machine) (cancel func()) {
	historyGauge.Record(context.Background(), int64(m.History().Len()))

	return m.Subscribe(func(v View) {
		historyGauge.Record(context.Background(), int64(v.History.Total))
	})
}

// RegisterPrometheus exposes the history size of m on reg as the
// calculator_history_entries gauge, read at scrape time.
func RegisterPrometheus(reg prometheus.Registerer, m *Machine) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calculator_history_entries",
		Help: "Number of entries in the calculation history.",
	}, func() float64 {
		return float64(m.History().Len())
	}))
}
