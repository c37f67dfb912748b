package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	version    INTEGER NOT NULL,
	PRIMARY KEY (collection, key)
);
`

// SQLiteRepositoryImpl persists the state in a single SQLite table.
type SQLiteRepositoryImpl struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and creates if needed) the database at path.
func NewSQLiteRepository(path string) (repository.StateRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers; compare-and-swap relies on it.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteRepositoryImpl{db: db}, nil
}

func (r *SQLiteRepositoryImpl) Get(ctx context.Context, collection, key string) (repository.Record, error) {
	rec := repository.Record{Key: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT value, version FROM kv WHERE collection = ? AND key = ?`, collection, key).
		Scan(&rec.Value, &rec.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Record{}, types.ErrNotFound
	}
	if err != nil {
		return repository.Record{}, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return rec, nil
}

func (r *SQLiteRepositoryImpl) Put(ctx context.Context, collection, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv (collection, key, value, version) VALUES (?, ?, ?, 1)
		 ON CONFLICT (collection, key) DO UPDATE SET value = excluded.value, version = kv.version + 1`,
		collection, key, nonNil(value))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *SQLiteRepositoryImpl) Delete(ctx context.Context, collection, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE collection = ? AND key = ?`, collection, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *SQLiteRepositoryImpl) DeleteCollection(ctx context.Context, collection string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

func (r *SQLiteRepositoryImpl) List(ctx context.Context, collection string) ([]repository.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, version FROM kv WHERE collection = ? ORDER BY key`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := []repository.Record{}
	for rows.Next() {
		var rec repository.Record
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepositoryImpl) CompareAndSwap(ctx context.Context, collection, key string, expected int64, value []byte) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO kv (collection, key, value, version) VALUES (?, ?, ?, 1)
			 ON CONFLICT (collection, key) DO NOTHING`,
			collection, key, nonNil(value))
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE kv SET value = ?, version = version + 1
			 WHERE collection = ? AND key = ? AND version = ?`,
			nonNil(value), collection, key, expected)
	}
	if err != nil {
		return false, fmt.Errorf("compare and swap %s/%s: %w", collection, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("compare and swap %s/%s: %w", collection, key, err)
	}
	return n == 1, nil
}

func (r *SQLiteRepositoryImpl) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
