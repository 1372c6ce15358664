// Package history holds the list of completed calculations, its
// persistence, and the page cursor the UI walks it with.
package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var ErrNotFound = errors.New("history entry not found")

// List is the in-memory history, newest first, mirrored to a Repository on
// every change.
type List struct {
	mu       sync.Mutex
	repo     Repository
	entries  []Entry
	page     int
	pageSize int
	lastID   int64
	now      func() time.Time
}

type Option func(*List)

func WithPageSize(size int) Option {
	return func(l *List) {
		if size > 0 {
			l.pageSize = size
		}
	}
}

// WithClock overrides the time source used for entry IDs.
func WithClock(now func() time.Time) Option {
	return func(l *List) { l.now = now }
}

// Load reads the persisted history from repo and returns a List over it.
func Load(ctx context.Context, repo Repository, opts ...Option) (*List, error) {
	entries, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	l := &List{
		repo:     repo,
		entries:  entries,
		page:     1,
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	for _, e := range entries {
		l.lastID = max(l.lastID, e.ID)
	}

	return l, nil
}

// Add records a calculation at the front of the list. The ID is the creation
// time in milliseconds, bumped if needed so IDs keep increasing.
func (l *List) Add(ctx context.Context, expression, result string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := max(l.now().UnixMilli(), l.lastID+1)
	e := Entry{ID: id, Expression: expression, Result: result}

	next := make([]Entry, 0, len(l.entries)+1)
	next = append(next, e)
	next = append(next, l.entries...)

	if err := l.commit(ctx, next); err != nil {
		return Entry{}, err
	}
	l.lastID = id
	return e, nil
}

// Delete removes the entry with the given id.
func (l *List) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := slices.Delete(slices.Clone(l.entries), idx, idx+1)
	return l.commit(ctx, next)
}

// Clear removes every entry.
func (l *List) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.commit(ctx, []Entry{})
}

// commit saves next and only then makes it current. The cursor goes back to
// page 1 on every successful mutation. Callers hold l.mu.
func (l *List) commit(ctx context.Context, next []Entry) error {
	if err := l.repo.Save(ctx, next); err != nil {
		return err
	}
	l.entries = next
	l.page = 1
	return nil
}

// Entries returns a copy of the list, newest first.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.entries)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Page returns the window at the current cursor.
func (l *List) Page() Page {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Paginate(l.entries, l.page, l.pageSize)
}

// PageAt returns page n without moving the cursor.
func (l *List) PageAt(n int) Page {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Paginate(l.entries, n, l.pageSize)
}

// NextPage advances the cursor unless it is on the last page.
func (l *List) NextPage() Page {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.page < TotalPages(len(l.entries), l.pageSize) {
		l.page++
	}
	return Paginate(l.entries, l.page, l.pageSize)
}

// PrevPage moves the cursor back unless it is on page 1.
func (l *List) PrevPage() Page {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.page > 1 {
		l.page--
	}
	return Paginate(l.entries, l.page, l.pageSize)
}

// GoToPage moves the cursor to page, clamped to the valid range.
func (l *List) GoToPage(page int) Page {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.page = min(max(page, 1), TotalPages(len(l.entries), l.pageSize))
	return Paginate(l.entries, l.page, l.pageSize)
}
