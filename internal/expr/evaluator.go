// Package expr evaluates flat infix arithmetic over + - * / with the usual
// precedence: multiplication and division first, then addition and
// subtraction, each tier left to right. There are no parentheses and no
// unary signs.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrDivideByZero        = errors.New("cannot divide by zero")
	ErrMalformedExpression = errors.New("malformed expression")
	ErrOutOfRange          = errors.New("result out of range")
)

// Parse tokenizes s, converts number text to values and checks that the
// tokens alternate number, operator, number, ..., number.
func Parse(s string) ([]Token, error) {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in %q", ErrMalformedExpression, s)
	}
	if len(tokens)%2 == 0 {
		return nil, fmt.Errorf("%w: %q has a dangling operator", ErrMalformedExpression, s)
	}

	for i := range tokens {
		tok := &tokens[i]
		wantNumber := i%2 == 0

		if wantNumber != (tok.Kind == NumberToken) {
			return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrMalformedExpression, tok.Text, i)
		}
		if !wantNumber {
			continue
		}

		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, tok.Text)
		}
		tok.Value = v
	}

	return tokens, nil
}

// Evaluate parses s and reduces it to a single value.
func Evaluate(s string) (float64, error) {
	tokens, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return Reduce(tokens)
}

// Reduce collapses a parsed token sequence in two passes, * and / first,
// then + and -. Each pass folds (left, op, right) into one number in place
// and rescans from the same index, so chains stay left-associative.
func Reduce(tokens []Token) (float64, error) {
	work := make([]Token, len(tokens))
	copy(work, tokens)

	for _, tier := range []int{2, 1} {
		var err error
		work, err = collapse(work, tier)
		if err != nil {
			return 0, err
		}
	}

	if len(work) != 1 || work[0].Kind != NumberToken {
		return 0, fmt.Errorf("%w: %d tokens left after reduction", ErrMalformedExpression, len(work))
	}
	return work[0].Value, nil
}

func collapse(tokens []Token, tier int) ([]Token, error) {
	for i := 1; i < len(tokens)-1; i += 2 {
		op := tokens[i].Op
		if op.Precedence() != tier {
			continue
		}

		v, err := Apply(op, tokens[i-1].Value, tokens[i+1].Value)
		if err != nil {
			return nil, err
		}

		tokens[i-1] = Token{Kind: NumberToken, Value: v}
		tokens = append(tokens[:i], tokens[i+2:]...)
		i -= 2
	}
	return tokens, nil
}

// Apply computes a op b. A zero divisor fails with ErrDivideByZero and a
// non-finite result with ErrOutOfRange.
func Apply(op Operator, a, b float64) (float64, error) {
	var v float64

	switch op {
	case Add:
		v = a + b
	case Sub:
		v = a - b
	case Mul:
		v = a * b
	case Div:
		if b == 0 {
			return 0, fmt.Errorf("%w: %g / %g", ErrDivideByZero, a, b)
		}
		v = a / b
	default:
		return 0, fmt.Errorf("%w: unknown operator %q", ErrMalformedExpression, op.String())
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %g %s %g", ErrOutOfRange, a, op, b)
	}
	return v, nil
}
