// Package app opens the store named by the config and builds the
// calculator services on top of it.
package app

import (
	"context"
	"fmt"

	"calc-server/internal/calculator"
	"calc-server/internal/config"
	"calc-server/internal/history"
	"calc-server/internal/store"
	"calc-server/internal/theme"
)

type App struct {
	Config  config.Config
	History *history.List
	Machine *calculator.Machine
	Theme   *theme.Service

	close func() error
}

func Open(ctx context.Context, cfg config.Config) (*App, error) {
	kv, closeKV, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	list, err := history.Load(ctx, history.NewKVRepository(kv), history.WithPageSize(cfg.PageSize))
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	themes, err := theme.Load(ctx, kv)
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	return &App{
		Config:  cfg,
		History: list,
		Machine: calculator.NewMachine(list),
		Theme:   themes,
		close:   closeKV,
	}, nil
}

func (a *App) Close() error {
	return a.close()
}

func openStore(cfg config.Config) (store.KV, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemory(), func() error { return nil }, nil
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
