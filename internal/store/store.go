// Package store persists application state as JSON values under fixed keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/unikit/internal/config"
	"github.com/pbaille/unikit/internal/domain"
)

// Persisted keys
const (
	KeyLedger       = "ledger"
	KeyGradePoints  = "grade_points"
	KeyGradeDefault = "grade_default"
	KeyRoster       = "roster"
	KeyMyCGPA       = "my_cgpa"
)

var (
	// ErrNotFound is returned by Get when a key has never been written
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt wraps values that were read but could not be decoded
	ErrCorrupt = errors.New("corrupt value")
)

// KV is a string-keyed byte store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// History records past CGPA calculations
type History interface {
	AddCalculation(ctx context.Context, cgpa, credits float64) (*domain.Calculation, error)
	ListCalculations(ctx context.Context, limit, offset int) ([]domain.Calculation, error)
}

// Backend is everything the service needs from storage
type Backend interface {
	KV
	History
}

// Open returns the backend selected by cfg
func Open(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return NewSQLite(cfg.Path)
	case "redis":
		return NewRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// GetJSON decodes the value under key into v. It reports false when the key
// is absent. Decode failures wrap ErrCorrupt; read failures are returned as is.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// PutJSON encodes v and writes it under key
func PutJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, data)
}
