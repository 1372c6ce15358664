package calculator

import (
	"calc-server/internal/expr"
	"calc-server/internal/history"
)

// View is what the display shows after an operation: the two operand lines
// and the current history page.
type View struct {
	Current  string       `json:"current"`  // operand being typed, or "0"
	Previous string       `json:"previous"` // "<operand> <glyph>" while an operator is pending
	Operator string       `json:"operator,omitempty"`
	History  history.Page `json:"history"`
}

func newView(s State, page history.Page) View {
	v := View{
		Current: s.Current,
		History: page,
	}
	if v.Current == "" {
		v.Current = "0"
	}
	if s.Pending != expr.NoOperator {
		v.Previous = s.Previous + " " + s.Pending.Glyph()
		v.Operator = s.Pending.String()
	}
	return v
}

// DigitRequest is the JSON body for POST /calculator/digit.
type DigitRequest struct {
	Digit string `json:"digit"` // "0"-"9" or "."
}

// OperatorRequest is the JSON body for POST /calculator/operator.
type OperatorRequest struct {
	Operator string `json:"operator"` // "+", "-", "*", "/"
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string  `json:"expression"`
	Display    string  `json:"display"`
	Value      float64 `json:"value"`
	Result     string  `json:"result"`
}
