package history

import (
	"context"
	"encoding/json"
	"fmt"

	"calc-server/internal/store"
)

// StorageKey is the store key the serialized history lives under.
const StorageKey = "calcHistory"

// Entry is one completed calculation.
type Entry struct {
	ID         int64  `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// Repository loads and saves the whole history list, newest first.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// KVRepository keeps the history as a JSON array in a store.KV.
type KVRepository struct {
	kv store.KV
}

func NewKVRepository(kv store.KV) *KVRepository {
	return &KVRepository{kv: kv}
}

func (r *KVRepository) Load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (r *KVRepository) Save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := r.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
