package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"calc-server/internal/app"
	"calc-server/internal/calculator"
	"calc-server/internal/config"
	"calc-server/internal/observability"
)

// initTelemetry starts the OTLP providers and creates the calculator
// instruments on them.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	shutdown, err := observability.InitTelemetry(ctx, observability.TelemetryOptions{
		ExportLogs: cfg.OTLPLogs,
	})
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// instrument hooks the calculator's history size into both the OTel gauge
// and the Prometheus scrape.
func instrument(a *app.App) (func(), error) {
	if err := calculator.RegisterPrometheus(prometheus.DefaultRegisterer, a.Machine); err != nil {
		return nil, err
	}
	return calculator.TrackHistorySize(a.Machine), nil
}
