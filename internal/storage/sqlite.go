package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"quickspese/internal/core"

	_ "modernc.org/sqlite"
)

const stateKey = "state"

// SQLiteRepository keeps the state as one JSON document in the app_state
// table, bumping a revision counter on every save.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// Load implements StateStore.
func (r *SQLiteRepository) Load(ctx context.Context) (core.State, error) {
	if r.db == nil {
		return core.State{}, ErrClosed
	}

	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, stateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.State{}.Normalize(), nil
	}
	if err != nil {
		return core.State{}, fmt.Errorf("load state: %w", err)
	}

	var s core.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return core.State{}, fmt.Errorf("decode state: %w", err)
	}
	return s.Normalize(), nil
}

// Save implements StateStore.
func (r *SQLiteRepository) Save(ctx context.Context, s core.State) error {
	if r.db == nil {
		return ErrClosed
	}

	raw, err := json.Marshal(s.Normalize())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = app_state.revision + 1,
			updated_at = CURRENT_TIMESTAMP`,
		stateKey, string(raw))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	slog.DebugContext(ctx, "State saved to SQLite",
		"expenses", len(s.Expenses),
		"budgets", len(s.Budgets),
		"undo_depth", len(s.UndoStack))
	return nil
}

// Revision returns how many times the state has been saved, zero when
// never.
func (r *SQLiteRepository) Revision(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrClosed
	}
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT revision FROM app_state WHERE key = ?`, stateKey).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return ErrClosed
	}
	return r.db.PingContext(ctx)
}
