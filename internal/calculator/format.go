package calculator

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"calc-server/internal/history"
)

// resultPlaces is how many decimal places history results keep.
const resultPlaces = 10

var glyphs = strings.NewReplacer("*", "×", "/", "÷", "-", "−")

// FormatResult rounds v to ten decimal places and drops trailing zeros, so
// 1/3 is stored as "0.3333333333" and 0.1+0.2 as "0.3".
func FormatResult(v float64) string {
	return decimal.NewFromFloat(v).Round(resultPlaces).String()
}

// FormatOperand renders v as plain decimal text with no exponent, so the
// result can be fed back into the evaluator as an operand.
func FormatOperand(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// DisplayExpression swaps ASCII operators for their display glyphs.
func DisplayExpression(expression string) string {
	return glyphs.Replace(expression)
}

// Record adds a finished calculation to the history list. expression is
// the ASCII form; it is stored with display glyphs.
func Record(ctx context.Context, list *history.List, expression string, result float64) (history.Entry, error) {
	return list.Add(ctx, DisplayExpression(expression), FormatResult(result))
}
