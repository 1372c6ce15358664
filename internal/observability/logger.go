package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var Logger = zap.NewNop()

// InitLogger replaces the no-op Logger with a JSON production logger, or a
// console development logger when dev is set.
func InitLogger(dev bool) error {
	var err error

	if dev {
		Logger, err = zap.NewDevelopment()
	} else {
		Logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// fields from the active OTel span in ctx.
//
// ctx itself is attached as zap.Any("context", ctx). The otelzap bridge picks
// up any field holding a context.Context and emits the record with it, which
// fills the native TraceID/SpanID on exported OTLP logs. The string fields
// keep stdout JSON greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
