package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"calc-server/internal/history"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Addr     string // CALC_ADDR
	Store    string // CALC_STORE: "sqlite" or "memory"
	DBPath   string // CALC_DB_PATH
	PageSize int    // CALC_PAGE_SIZE
	LogDev   bool   // CALC_LOG_DEV
	OTLPLogs bool   // CALC_OTLP_LOGS
}

func Default() Config {
	return Config{
		Addr:     ":8080",
		Store:    StoreSQLite,
		DBPath:   "calculator.db",
		PageSize: history.DefaultPageSize,
	}
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// FromEnv starts from Default and applies any CALC_* variables that are set.
func FromEnv() (Config, error) {
	cfg := Default()

	if val := os.Getenv("CALC_ADDR"); val != "" {
		cfg.Addr = val
	}
	if val := os.Getenv("CALC_STORE"); val != "" {
		cfg.Store = val
	}
	if val := os.Getenv("CALC_DB_PATH"); val != "" {
		cfg.DBPath = val
	}

	if val := os.Getenv("CALC_PAGE_SIZE"); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("CALC_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = size
	}

	for name, dst := range map[string]*bool{
		"CALC_LOG_DEV":   &cfg.LogDev,
		"CALC_OTLP_LOGS": &cfg.OTLPLogs,
	} {
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("CALC_DB_PATH is required for the sqlite store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown CALC_STORE %q", c.Store)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("CALC_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	return nil
}
