// Package calculator implements the key-press state machine behind the
// calculator UI and exposes it over HTTP.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"calc-server/internal/expr"
	"calc-server/internal/history"
)

// State is the operand entry state. Previous is the committed left operand,
// Current the one being typed, Pending the operator between them.
type State struct {
	Previous string        `json:"previous"`
	Current  string        `json:"current"`
	Pending  expr.Operator `json:"-"`
}

// Machine applies input operations to a State one at a time and tells its
// subscribers about every change.
type Machine struct {
	mu      sync.Mutex
	state   State
	history *history.List

	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(View)
}

func NewMachine(list *history.List) *Machine {
	return &Machine{history: list}
}

// History is the list calculations are recorded to.
func (m *Machine) History() *history.List {
	return m.history
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	return newView(m.state, m.history.Page())
}

// Subscribe registers fn to receive a View after every successful
// operation. The returned func removes it.
func (m *Machine) Subscribe(fn func(View)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn against a copy of the state and keeps the copy only if fn
// succeeds, so a rejected operation leaves the state untouched.
func (m *Machine) mutate(fn func(s *State) error) error {
	m.mu.Lock()

	next := m.state
	if err := fn(&next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.state = next

	view := newView(m.state, m.history.Page())
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(view)
	}
	return nil
}

// AppendDigit types d ("0"-"9" or ".") onto the current operand. A second
// point in the same operand is ignored.
func (m *Machine) AppendDigit(d string) error {
	if len(d) != 1 || !strings.Contains("0123456789.", d) {
		return fmt.Errorf("%w: %q", ErrInvalidDigit, d)
	}

	return m.mutate(func(s *State) error {
		if d == "." && strings.Contains(s.Current, ".") {
			return nil
		}
		s.Current += d
		return nil
	})
}

// Delete removes the last character of the current operand.
func (m *Machine) Delete() error {
	return m.mutate(func(s *State) error {
		if s.Current != "" {
			s.Current = s.Current[:len(s.Current)-1]
		}
		return nil
	})
}

// Clear resets the operands and the pending operator.
func (m *Machine) Clear() error {
	return m.mutate(func(s *State) error {
		*s = State{}
		return nil
	})
}

// ChooseOperator selects op as the pending operator. With both operands
// filled in, the pending expression is evaluated and recorded first and its
// result becomes the new left operand.
func (m *Machine) ChooseOperator(ctx context.Context, op expr.Operator) error {
	if op.Precedence() == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, op.String())
	}

	return m.mutate(func(s *State) error {
		switch {
		case s.Current == "" && s.Previous != "":
			// Changing the operator before the right operand is typed.
		case s.Current != "" && s.Previous != "":
			expression := s.expression()
			result, err := evaluate(expression)
			if err != nil {
				return err
			}
			if _, err := Record(ctx, m.history, expression, result); err != nil {
				return err
			}
			s.Previous = FormatOperand(result)
			s.Current = ""
		case s.Current != "":
			s.Previous, s.Current = s.Current, ""
		}

		s.Pending = op
		return nil
	})
}

// Equals evaluates previous, pending operator and current as one
// expression, records it, and leaves the result as the current operand.
func (m *Machine) Equals(ctx context.Context) error {
	return m.mutate(func(s *State) error {
		if s.Previous == "" && s.Current == "" {
			return nil
		}

		expression := s.expression()
		if strings.ContainsAny(expression[len(expression)-1:], "+-*/") {
			return fmt.Errorf("%w: %q ends with an operator", ErrInvalidExpression, expression)
		}

		result, err := evaluate(expression)
		if err != nil {
			return err
		}
		if _, err := Record(ctx, m.history, expression, result); err != nil {
			return err
		}

		*s = State{Current: FormatOperand(result)}
		return nil
	})
}

// Compute applies the pending operator to exactly two numeric operands
// without parsing a full expression. It does nothing unless both operands
// are numbers and an operator is pending.
func (m *Machine) Compute(ctx context.Context) error {
	return m.mutate(func(s *State) error {
		prev, errPrev := strconv.ParseFloat(s.Previous, 64)
		cur, errCur := strconv.ParseFloat(s.Current, 64)
		if errPrev != nil || errCur != nil || s.Pending == expr.NoOperator {
			return nil
		}

		result, err := expr.Apply(s.Pending, prev, cur)
		if err != nil {
			return err
		}

		expression := fmt.Sprintf("%s %s %s", FormatOperand(prev), s.Pending, FormatOperand(cur))
		if _, err := Record(ctx, m.history, expression, result); err != nil {
			return err
		}

		*s = State{Current: FormatOperand(result)}
		return nil
	})
}

// DeleteHistoryEntry removes one history entry.
func (m *Machine) DeleteHistoryEntry(ctx context.Context, id int64) error {
	return m.mutate(func(*State) error {
		return m.history.Delete(ctx, id)
	})
}

func (m *Machine) ClearHistory(ctx context.Context) error {
	return m.mutate(func(*State) error {
		return m.history.Clear(ctx)
	})
}

func (m *Machine) NextPage() error {
	return m.mutate(func(*State) error {
		m.history.NextPage()
		return nil
	})
}

func (m *Machine) PrevPage() error {
	return m.mutate(func(*State) error {
		m.history.PrevPage()
		return nil
	})
}

func (m *Machine) GoToPage(page int) error {
	return m.mutate(func(*State) error {
		m.history.GoToPage(page)
		return nil
	})
}

func (s State) expression() string {
	return s.Previous + s.Pending.String() + s.Current
}

// evaluate runs the evaluator and folds malformed input into
// ErrInvalidExpression.
func evaluate(expression string) (float64, error) {
	v, err := expr.Evaluate(expression)
	if errors.Is(err, expr.ErrMalformedExpression) {
		return 0, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	return v, err
}
