package calculator

import (
	"context"
	"errors"
	"testing"

	"calc-server/internal/expr"
	"calc-server/internal/history"
	"calc-server/internal/store"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()

	list, err := history.Load(context.Background(), history.NewKVRepository(store.NewMemory()))
	if err != nil {
		t.Fatalf("loading history: %v", err)
	}
	return NewMachine(list)
}

// press feeds a key sequence to m: digits and ".", operators, "=" for
// equals, "C" for clear and "<" for delete.
func press(t *testing.T, m *Machine, keys ...string) error {
	t.Helper()
	ctx := context.Background()

	for _, k := range keys {
		var err error
		switch k {
		case "=":
			err = m.Equals(ctx)
		case "C":
			err = m.Clear()
		case "<":
			err = m.Delete()
		case "+", "-", "*", "/":
			err = m.ChooseOperator(ctx, expr.Operator(k[0]))
		default:
			err = m.AppendDigit(k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func mustPress(t *testing.T, m *Machine, keys ...string) {
	t.Helper()
	if err := press(t, m, keys...); err != nil {
		t.Fatalf("pressing %v: %v", keys, err)
	}
}

func TestAppendDigit(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "0", "1", ".", "5", ".", "2")

	if got := m.State().Current; got != "01.52" {
		t.Fatalf("expected %q, got %q", "01.52", got)
	}

	if err := m.AppendDigit("x"); !errors.Is(err, ErrInvalidDigit) {
		t.Fatalf("expected ErrInvalidDigit, got %v", err)
	}
}

func TestDeleteDropsLastCharacter(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "1", "2", "<")
	if got := m.State().Current; got != "1" {
		t.Fatalf("expected %q, got %q", "1", got)
	}

	mustPress(t, m, "<", "<")
	if got := m.State().Current; got != "" {
		t.Fatalf("expected empty operand, got %q", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "4", "+", "2", "C")
	if s := m.State(); s != (State{}) {
		t.Fatalf("expected empty state, got %#v", s)
	}

	mustPress(t, m, "C")
	if s := m.State(); s != (State{}) {
		t.Fatalf("expected empty state after second clear, got %#v", s)
	}
}

func TestChooseOperatorCases(t *testing.T) {
	t.Run("nothing entered", func(t *testing.T) {
		m := newTestMachine(t)
		mustPress(t, m, "*")

		want := State{Pending: expr.Mul}
		if s := m.State(); s != want {
			t.Fatalf("expected %#v, got %#v", want, s)
		}
	})

	t.Run("first operator moves current to previous", func(t *testing.T) {
		m := newTestMachine(t)
		mustPress(t, m, "1", "2", "+")

		want := State{Previous: "12", Pending: expr.Add}
		if s := m.State(); s != want {
			t.Fatalf("expected %#v, got %#v", want, s)
		}
	})

	t.Run("changing operator", func(t *testing.T) {
		m := newTestMachine(t)
		mustPress(t, m, "1", "2", "+", "-")

		want := State{Previous: "12", Pending: expr.Sub}
		if s := m.State(); s != want {
			t.Fatalf("expected %#v, got %#v", want, s)
		}
		if m.History().Len() != 0 {
			t.Fatalf("expected no history, got %d entries", m.History().Len())
		}
	})
}

func TestOperatorChaining(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "5", "+", "3", "*")

	want := State{Previous: "8", Pending: expr.Mul}
	if s := m.State(); s != want {
		t.Fatalf("expected %#v after chaining, got %#v", want, s)
	}

	mustPress(t, m, "2", "=")

	if s := m.State(); s != (State{Current: "16"}) {
		t.Fatalf("expected result 16, got %#v", s)
	}

	entries := m.History().Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[1].Expression != "5+3" || entries[1].Result != "8" {
		t.Fatalf("unexpected first entry: %#v", entries[1])
	}
	if entries[0].Expression != "8×2" || entries[0].Result != "16" {
		t.Fatalf("unexpected second entry: %#v", entries[0])
	}
}

func TestEqualsRecordsDisplayExpression(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "1", "0", "-", "4", "=")

	if got := m.State().Current; got != "6" {
		t.Fatalf("expected 6, got %q", got)
	}

	e := m.History().Entries()[0]
	if e.Expression != "10−4" || e.Result != "6" {
		t.Fatalf("unexpected entry: %#v", e)
	}
}

func TestEqualsWithNothingEnteredIsNoop(t *testing.T) {
	m := newTestMachine(t)

	mustPress(t, m, "=")

	if s := m.State(); s != (State{}) {
		t.Fatalf("expected empty state, got %#v", s)
	}
	if m.History().Len() != 0 {
		t.Fatalf("expected no history, got %d", m.History().Len())
	}
}

func TestEqualsRejectsTrailingOperator(t *testing.T) {
	m := newTestMachine(t)
	mustPress(t, m, "5", "+")
	before := m.State()

	err := m.Equals(context.Background())
	if !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression, got %v", err)
	}
	if UserMessage(err) != "Invalid expression" {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
	if s := m.State(); s != before {
		t.Fatalf("expected state %#v to be unchanged, got %#v", before, s)
	}
}

func TestDivideByZeroLeavesStateUnchanged(t *testing.T) {
	t.Run("equals", func(t *testing.T) {
		m := newTestMachine(t)
		mustPress(t, m, "5", "/", "0")
		before := m.State()

		err := m.Equals(context.Background())
		if !errors.Is(err, expr.ErrDivideByZero) {
			t.Fatalf("expected ErrDivideByZero, got %v", err)
		}
		if UserMessage(err) != "Cannot divide by zero" {
			t.Fatalf("unexpected message %q", UserMessage(err))
		}
		if s := m.State(); s != before {
			t.Fatalf("expected state %#v to be unchanged, got %#v", before, s)
		}
		if m.History().Len() != 0 {
			t.Fatalf("expected no history, got %d", m.History().Len())
		}
	})

	t.Run("chaining", func(t *testing.T) {
		m := newTestMachine(t)
		mustPress(t, m, "5", "/", "0")
		before := m.State()

		err := m.ChooseOperator(context.Background(), expr.Add)
		if !errors.Is(err, expr.ErrDivideByZero) {
			t.Fatalf("expected ErrDivideByZero, got %v", err)
		}
		if s := m.State(); s != before {
			t.Fatalf("expected state %#v to be unchanged, got %#v", before, s)
		}
	})
}

func TestMultiPointOperandFailsAtEvaluation(t *testing.T) {
	m := newTestMachine(t)

	// Keys alone never produce this, so plant it on the state directly.
	mustPress(t, m, "1", ".", "2", "+")
	m.state.Previous = "1.2.3"

	mustPress(t, m, "4")
	err := m.Equals(context.Background())
	if !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression, got %v", err)
	}
}

func TestCompute(t *testing.T) {
	m := newTestMachine(t)
	ctx := context.Background()

	mustPress(t, m, "7", "*", "6")
	if err := m.Compute(ctx); err != nil {
		t.Fatalf("compute: %v", err)
	}

	if s := m.State(); s != (State{Current: "42"}) {
		t.Fatalf("expected 42, got %#v", s)
	}
	if e := m.History().Entries()[0]; e.Expression != "7 × 6" || e.Result != "42" {
		t.Fatalf("unexpected entry: %#v", e)
	}

	// Missing right operand: nothing happens.
	mustPress(t, m, "+")
	before := m.State()
	if err := m.Compute(ctx); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if s := m.State(); s != before {
		t.Fatalf("expected no change, got %#v", s)
	}

	mustPress(t, m, "C", "1", "/", "0")
	before = m.State()
	if err := m.Compute(ctx); !errors.Is(err, expr.ErrDivideByZero) {
		t.Fatalf("expected ErrDivideByZero, got %v", err)
	}
	if s := m.State(); s != before {
		t.Fatalf("expected state unchanged, got %#v", s)
	}
}

func TestViewDisplayStrings(t *testing.T) {
	m := newTestMachine(t)

	v := m.View()
	if v.Current != "0" || v.Previous != "" {
		t.Fatalf("unexpected empty view: %+v", v)
	}

	mustPress(t, m, "9", "/")
	v = m.View()
	if v.Current != "0" || v.Previous != "9 ÷" || v.Operator != "/" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	m := newTestMachine(t)

	var seen []View
	cancel := m.Subscribe(func(v View) { seen = append(seen, v) })

	mustPress(t, m, "2", "+", "2", "=")
	if len(seen) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(seen))
	}
	last := seen[len(seen)-1]
	if last.Current != "4" || last.History.Total != 1 {
		t.Fatalf("unexpected final view: %+v", last)
	}

	// Rejected operations do not notify.
	mustPress(t, m, "/", "0")
	n := len(seen)
	_ = m.Equals(context.Background())
	if len(seen) != n {
		t.Fatalf("expected no notification for rejected operation")
	}

	cancel()
	mustPress(t, m, "C")
	if len(seen) != n {
		t.Fatalf("expected no notification after cancel")
	}
}

func TestHistoryOperationsResetPage(t *testing.T) {
	m := newTestMachine(t)
	ctx := context.Background()

	for range 12 {
		mustPress(t, m, "1", "+", "1", "=", "C")
	}

	if err := m.NextPage(); err != nil {
		t.Fatalf("next page: %v", err)
	}
	if err := m.NextPage(); err != nil {
		t.Fatalf("next page: %v", err)
	}
	v := m.View()
	if v.History.Number != 3 || len(v.History.Entries) != 2 {
		t.Fatalf("unexpected page: %+v", v.History)
	}

	if err := m.DeleteHistoryEntry(ctx, v.History.Entries[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := m.View().History.Number; got != 1 {
		t.Fatalf("expected page 1 after delete, got %d", got)
	}

	if err := m.DeleteHistoryEntry(ctx, -1); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.ClearHistory(ctx); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if got := m.View().History; got.Total != 0 || got.TotalPages != 1 {
		t.Fatalf("unexpected page after clear: %+v", got)
	}
}

func TestNegativeResultCannotBeChained(t *testing.T) {
	m := newTestMachine(t)
	mustPress(t, m, "2", "-", "5", "=")

	if got := m.State().Current; got != "-3" {
		t.Fatalf("expected -3, got %q", got)
	}

	mustPress(t, m, "+", "4")
	before := m.State()

	if err := press(t, m, "="); !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression, got %v", err)
	}
	if s := m.State(); s != before {
		t.Fatalf("expected state %#v to be unchanged, got %#v", before, s)
	}
}
