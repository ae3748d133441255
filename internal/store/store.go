// Package store handles SQLite persistence of the selection state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/wsec/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrStorageUnavailable is returned by Load when no state was ever saved.
var ErrStorageUnavailable = errors.New("no saved selection; run 'wsec all' first")

// Repository persists a single selection record.
type Repository interface {
	Reset(ctx context.Context) error
	Save(ctx context.Context, sel model.Selection) error
	Load(ctx context.Context) (model.Selection, error)
}

// Store wraps SQLite access for the selection record.
type Store struct {
	db *sql.DB
}

var _ Repository = (*Store)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS selection (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			indexes TEXT NOT NULL,
			filters TEXT NOT NULL,
			loads TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset replaces the stored selection with an empty one.
func (s *Store) Reset(ctx context.Context) error {
	return s.Save(ctx, model.EmptySelection())
}

// Save overwrites the stored selection in one transaction.
func (s *Store) Save(ctx context.Context, sel model.Selection) (err error) {
	sel = sel.Normalize()
	indexes, err := json.Marshal(sel.Indexes)
	if err != nil {
		return fmt.Errorf("encode indexes: %w", err)
	}
	filters, err := json.Marshal(sel.Filters)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	loads, err := json.Marshal(sel.Loads)
	if err != nil {
		return fmt.Errorf("encode loads: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO selection (id, indexes, filters, loads, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	indexes = excluded.indexes,
		 	filters = excluded.filters,
		 	loads = excluded.loads,
		 	updated_at = excluded.updated_at`,
		string(indexes),
		string(filters),
		string(loads),
		time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored selection or ErrStorageUnavailable.
func (s *Store) Load(ctx context.Context) (model.Selection, error) {
	var indexes, filters, loads string
	err := s.db.QueryRowContext(ctx,
		`SELECT indexes, filters, loads FROM selection WHERE id = 1`,
	).Scan(&indexes, &filters, &loads)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Selection{}, ErrStorageUnavailable
	}
	if err != nil {
		return model.Selection{}, err
	}

	var sel model.Selection
	if err := json.Unmarshal([]byte(indexes), &sel.Indexes); err != nil {
		return model.Selection{}, fmt.Errorf("decode indexes: %w", err)
	}
	if err := json.Unmarshal([]byte(filters), &sel.Filters); err != nil {
		return model.Selection{}, fmt.Errorf("decode filters: %w", err)
	}
	if err := json.Unmarshal([]byte(loads), &sel.Loads); err != nil {
		return model.Selection{}, fmt.Errorf("decode loads: %w", err)
	}
	return sel.Normalize(), nil
}
