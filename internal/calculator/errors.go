package calculator

import (
	"errors"

	"calc-server/internal/expr"
)

var (
	// ErrInvalidExpression is returned when equals is pressed on an
	// expression that cannot be evaluated, such as "5+" with no right operand.
	ErrInvalidExpression = errors.New("invalid expression")
	ErrInvalidDigit      = errors.New("invalid digit")
	ErrUnknownOperator   = errors.New("unknown operator")
)

// UserMessage is the alert text shown for a rejected operation.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, expr.ErrDivideByZero):
		return "Cannot divide by zero"
	case errors.Is(err, ErrInvalidExpression), errors.Is(err, expr.ErrMalformedExpression):
		return "Invalid expression"
	case errors.Is(err, expr.ErrOutOfRange):
		return "Result out of range"
	case errors.Is(err, ErrInvalidDigit):
		return "Invalid digit"
	case errors.Is(err, ErrUnknownOperator):
		return "Unknown operator"
	default:
		return "Something went wrong"
	}
}

// IsUserError reports whether err is a rejected input rather than a failure
// of the calculator itself.
func IsUserError(err error) bool {
	return errors.Is(err, expr.ErrDivideByZero) ||
		errors.Is(err, expr.ErrMalformedExpression) ||
		errors.Is(err, expr.ErrOutOfRange) ||
		errors.Is(err, ErrInvalidExpression) ||
		errors.Is(err, ErrInvalidDigit) ||
		errors.Is(err, ErrUnknownOperator)
}
