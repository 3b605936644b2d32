package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/daybook/internal/remote"
)

const todoColumns = `id, text, completed, target_date, created_at, updated_at, completed_at,
	is_long_term, start_date, end_date, is_all_day, is_all_year, is_month, repeat, is_pinned`

// TodoStore serves remote.Store from the todos table.
type TodoStore struct {
	db *sql.DB
}

var _ remote.Store = (*TodoStore)(nil)

func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (remote.Record, error) {
	var (
		rec                             remote.Record
		completedAt, startDate, endDate sql.NullString
	)
	if err := s.Scan(
		&rec.ID, &rec.Text, &rec.Completed, &rec.TargetDate, &rec.CreatedAt, &rec.UpdatedAt, &completedAt,
		&rec.IsLongTerm, &startDate, &endDate, &rec.IsAllDay, &rec.IsAllYear, &rec.IsMonth, &rec.Repeat, &rec.IsPinned,
	); err != nil {
		return remote.Record{}, err
	}
	rec.CompletedAt = fromNull(completedAt)
	rec.StartDate = fromNull(startDate)
	rec.EndDate = fromNull(endDate)
	return rec, nil
}

func (s *TodoStore) SelectAll(ctx context.Context) ([]remote.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	defer rows.Close()

	out := []remote.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *TodoStore) Get(ctx context.Context, id string) (remote.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Record{}, fmt.Errorf("%w: %q", remote.ErrNotFound, id)
	}
	return rec, err
}

func (s *TodoStore) Insert(ctx context.Context, rec remote.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("%w: id is required", remote.ErrInvalidField)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`, recordArgs(rec)...)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", remote.ErrConflict, rec.ID)
	}
	return nil
}

// Update applies fields over the stored row; unknown or mistyped fields
// leave the row untouched.
func (s *TodoStore) Update(ctx context.Context, id string, fields remote.Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", remote.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	next, err := rec.Apply(fields)
	if err != nil {
		return err
	}
	args := append(recordArgs(next)[1:], id)
	res, err := tx.ExecContext(ctx, `UPDATE todos SET
		text = ?, completed = ?, target_date = ?, created_at = ?, updated_at = ?, completed_at = ?,
		is_long_term = ?, start_date = ?, end_date = ?, is_all_day = ?, is_all_year = ?, is_month = ?,
		repeat = ?, is_pinned = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *TodoStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return checkRowsAffected(res, id)
}

func (s *TodoStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func recordArgs(r remote.Record) []any {
	return []any{
		r.ID, r.Text, r.Completed, r.TargetDate, r.CreatedAt, r.UpdatedAt, toNull(r.CompletedAt),
		r.IsLongTerm, toNull(r.StartDate), toNull(r.EndDate), r.IsAllDay, r.IsAllYear, r.IsMonth,
		repeatOrNone(r.Repeat), r.IsPinned,
	}
}

func repeatOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", remote.ErrNotFound, id)
	}
	return nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
