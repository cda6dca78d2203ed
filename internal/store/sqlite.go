package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/unikit/internal/domain"
)

//go:embed schema.sql
var schema string

// SQLite handles database operations on a local sqlite file
type SQLite struct {
	db *sql.DB
}

var _ Backend = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time; sqlite locks the whole file anyway
	db.SetMaxOpenConns(1)

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the raw value stored under key
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put replaces the value stored under key
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, string(value), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key; missing keys are ignored
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// AddCalculation records a CGPA computation and returns it
func (s *SQLite) AddCalculation(ctx context.Context, cgpa, credits float64) (*domain.Calculation, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO calculations (id, cgpa, credits, created_at) VALUES (?, ?, ?, ?)",
		id, cgpa, credits, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calculation: %w", err)
	}

	return &domain.Calculation{
		ID:        id,
		CGPA:      cgpa,
		Credits:   credits,
		CreatedAt: now,
	}, nil
}

// ListCalculations returns recent calculations with pagination
func (s *SQLite) ListCalculations(ctx context.Context, limit, offset int) ([]domain.Calculation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cgpa, credits, created_at FROM calculations ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	var calcs []domain.Calculation
	for rows.Next() {
		var c domain.Calculation
		if err := rows.Scan(&c.ID, &c.CGPA, &c.Credits, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		calcs = append(calcs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}

	return calcs, nil
}
