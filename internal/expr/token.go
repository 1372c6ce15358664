package expr

import "fmt"

// Operator is one of the four arithmetic operators. The zero value means no
// operator is selected.
type Operator byte

const (
	NoOperator Operator = 0
	Add        Operator = '+'
	Sub        Operator = '-'
	Mul        Operator = '*'
	Div        Operator = '/'
)

// ParseOperator accepts the ASCII form used on the wire ("+", "-", "*", "/").
func ParseOperator(s string) (Operator, error) {
	if len(s) == 1 && isOperator(s[0]) {
		return Operator(s[0]), nil
	}
	return NoOperator, fmt.Errorf("unknown operator %q", s)
}

func (o Operator) String() string {
	if o == NoOperator {
		return ""
	}
	return string(rune(o))
}

// Glyph returns the display form of the operator.
func (o Operator) Glyph() string {
	switch o {
	case Sub:
		return "−"
	case Mul:
		return "×"
	case Div:
		return "÷"
	default:
		return o.String()
	}
}

// Precedence is 2 for * and /, 1 for + and -, 0 otherwise.
func (o Operator) Precedence() int {
	switch o {
	case Mul, Div:
		return 2
	case Add, Sub:
		return 1
	default:
		return 0
	}
}

func isOperator(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/'
}

func isNumeric(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

// TokenKind tells a number token from an operator token.
type TokenKind int

const (
	NumberToken TokenKind = iota
	OperatorToken
)

// Token is a single lexical element of an expression. Value is only set once
// the token has been through Parse.
type Token struct {
	Kind  TokenKind
	Text  string
	Value float64
	Op    Operator
}

// Tokenize splits s into number and operator tokens. Runs of digits and
// points become one number token; anything that is neither is dropped.
func Tokenize(s string) []Token {
	var tokens []Token

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isNumeric(c):
			start := i
			for i < len(s) && isNumeric(s[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: NumberToken, Text: s[start:i]})
		case isOperator(c):
			tokens = append(tokens, Token{Kind: OperatorToken, Text: s[i : i+1], Op: Operator(c)})
			i++
		default:
			i++
		}
	}

	return tokens
}
