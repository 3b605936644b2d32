package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteTimeLayout     = time.RFC3339Nano
	defaultSnapshotLimit = 20
)

// Snapshot is a value a key held before it was overwritten.
type Snapshot struct {
	ID      int64
	Key     string
	Value   []byte
	SavedAt time.Time
}

type SQLiteKV struct {
	db            *sql.DB
	now           func() time.Time
	snapshotLimit int
}

func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteKV{db: db, now: time.Now, snapshotLimit: defaultSnapshotLimit}, nil
}

// OpenSQLite opens the database at path and brings its schema up to date.
func OpenSQLite(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	kv, err := NewSQLiteKV(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put replaces the value under key. The previous value is kept as a snapshot;
// only the newest snapshots per key survive.
func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(sqliteTimeLayout)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_snapshots (key, value, saved_at)
		SELECT key, value, ? FROM kv_entries WHERE key = ? AND value <> ?`,
		now, key, value,
	); err != nil {
		return fmt.Errorf("snapshot %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM kv_snapshots
		WHERE key = ? AND id NOT IN (
			SELECT id FROM kv_snapshots WHERE key = ? ORDER BY id DESC LIMIT ?
		)`,
		key, key, s.snapshotLimit,
	); err != nil {
		return fmt.Errorf("trim snapshots %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Snapshots lists earlier values of key, newest first.
func (s *SQLiteKV) Snapshots(ctx context.Context, key string, limit int) ([]Snapshot, error) {
	query := `SELECT id, key, value, saved_at FROM kv_snapshots WHERE key = ? ORDER BY id DESC`
	args := []any{key}
	query += applyPagination(&args, limit, 0)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Restore writes the snapshot with the given id back under its key.
func (s *SQLiteKV) Restore(ctx context.Context, id int64) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, key, value, saved_at FROM kv_snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	if err := s.Put(ctx, snap.Key, snap.Value); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (Snapshot, error) {
	var out Snapshot
	var saved string
	if err := s.Scan(&out.ID, &out.Key, &out.Value, &saved); err != nil {
		return Snapshot{}, err
	}
	savedAt, err := time.Parse(sqliteTimeLayout, saved)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse time %q: %w", saved, err)
	}
	out.SavedAt = savedAt
	return out, nil
}

func applyPagination(args *[]any, limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	*args = append(*args, limit)
	if offset <= 0 {
		return ` LIMIT ?`
	}
	*args = append(*args, offset)
	return ` LIMIT ? OFFSET ?`
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
