package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calc-server/internal/expr"
	"calc-server/internal/handlers"
	"calc-server/internal/history"
	"calc-server/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var errInvalidBody = errors.New("invalid request body")

// Handler serves the calculator API over one shared Machine.
type Handler struct {
	machine *Machine
}

func NewHandler(m *Machine) *Handler {
	return &Handler{machine: m}
}

// ---------------------------------------------------------------------------
// Handlers: key presses
// ---------------------------------------------------------------------------

// State handles GET /calculator/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "state", func(context.Context) error { return nil })
}

// Digit handles POST /calculator/digit
func (h *Handler) Digit(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "digit", func(ctx context.Context) error {
		var req DigitRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("calculator.digit", req.Digit))
		return h.machine.AppendDigit(req.Digit)
	})
}

// Operator handles POST /calculator/operator
func (h *Handler) Operator(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "operator", func(ctx context.Context) error {
		var req OperatorRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		op, err := expr.ParseOperator(req.Operator)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnknownOperator, err)
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("calculator.operator", op.String()))
		return h.machine.ChooseOperator(ctx, op)
	})
}

// Delete handles POST /calculator/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "delete", func(context.Context) error { return h.machine.Delete() })
}

// Clear handles POST /calculator/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "clear", func(context.Context) error { return h.machine.Clear() })
}

// Equals handles POST /calculator/equals
func (h *Handler) Equals(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "equals", h.machine.Equals)
}

// Compute handles POST /calculator/compute, the two-operand path.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "compute", h.machine.Compute)
}

// ---------------------------------------------------------------------------
// Handlers: history
// ---------------------------------------------------------------------------

// History handles GET /calculator/history, optionally jumping to ?page=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "history", func(context.Context) error {
		raw := r.URL.Query().Get("page")
		if raw == "" {
			return nil
		}
		page, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: page %q", errInvalidBody, raw)
		}
		return h.machine.GoToPage(page)
	})
}

// NextPage handles POST /calculator/history/next
func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "history.next", func(context.Context) error { return h.machine.NextPage() })
}

// PrevPage handles POST /calculator/history/prev
func (h *Handler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "history.prev", func(context.Context) error { return h.machine.PrevPage() })
}

// ClearHistory handles DELETE /calculator/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "history.clear", h.machine.ClearHistory)
}

// DeleteHistoryEntry handles DELETE /calculator/history/{id}
func (h *Handler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "history.delete", func(ctx context.Context) error {
		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: id %q", errInvalidBody, raw)
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("calculator.history.id", id))
		return h.machine.DeleteHistoryEntry(ctx, id)
	})
}

// run is the shared implementation for every endpoint that drives the
// Machine: child span, timing, metrics, trace-correlated logging, and a View
// response on success.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, opName string, op func(context.Context) error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	err := op(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		status, msg := classify(err)
		observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
		return
	}

	view := h.machine.View()

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)

	span.AddEvent("operation.complete", trace.WithAttributes(
		attribute.String("current", view.Current),
		attribute.String("previous", view.Previous),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Debug("calculator operation completed",
		zap.String("operation", opName),
		zap.String("current", view.Current),
		zap.String("previous", view.Previous),
		zap.Int("history_total", view.History.Total),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, view)
}

// ---------------------------------------------------------------------------
// Handler: stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It evaluates a whole
// expression without touching the key-press state or the history.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	const opName = "evaluate"

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := decode(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("calculator.expression", req.Expression))

	start := time.Now()
	value, err := evaluate(req.Expression)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		status, msg := classify(err)
		observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, value, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", value),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", value))
	span.SetStatus(codes.Ok, "")

	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.Float64("result", value),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Display:    DisplayExpression(req.Expression),
		Value:      value,
		Result:     FormatResult(value),
	})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

// classify maps an operation error to its HTTP status and response message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, ErrInvalidDigit), errors.Is(err, ErrUnknownOperator):
		return http.StatusBadRequest, UserMessage(err)
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "history entry not found"
	case IsUserError(err):
		return http.StatusUnprocessableEntity, UserMessage(err)
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
