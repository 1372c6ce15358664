package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calc-server/internal/handlers"
)

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response. The request id is carried by the
// X-Request-ID header, not the body.
//
// Client errors (4xx) are logged at warn level, everything else at error.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.Int("status", status),
	))

	log := logger.Error
	if status < http.StatusInternalServerError {
		log = logger.Warn
	}
	log(msg,
		zap.String("operation", opName),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	handlers.WriteError(w, status, msg)
}
