package theme

import (
	"context"
	"fmt"
	"sync"

	"calc-server/internal/store"
)

// StorageKey is the store key the theme preference lives under.
const StorageKey = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Service holds the current theme and persists every change.
type Service struct {
	mu      sync.Mutex
	kv      store.KV
	current Theme
}

// Load reads the stored preference. Anything other than "dark" is light.
func Load(ctx context.Context, kv store.KV) (*Service, error) {
	raw, _, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}

	current := Light
	if Theme(raw) == Dark {
		current = Dark
	}

	return &Service{kv: kv, current: current}, nil
}

func (s *Service) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Toggle flips between light and dark and saves the result.
func (s *Service) Toggle(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Dark
	if s.current == Dark {
		next = Light
	}

	if err := s.kv.Set(ctx, StorageKey, string(next)); err != nil {
		return s.current, fmt.Errorf("save theme: %w", err)
	}
	s.current = next
	return next, nil
}
