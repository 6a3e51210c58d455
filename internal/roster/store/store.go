package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/database"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Replace(ctx context.Context, entries []roster.Entry) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE roster_entries SET active = ?`), false); err != nil {
			return fmt.Errorf("deactivating roster: %w", err)
		}

		upsert := tx.Rebind(`
			INSERT INTO roster_entries (student_id, class_id, active, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (student_id) DO UPDATE
			SET class_id = excluded.class_id, active = excluded.active, updated_at = excluded.updated_at`)

		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, upsert, e.StudentID, e.ClassID, e.Active, e.UpdatedAt); err != nil {
				return fmt.Errorf("upserting roster entry %s: %w", e.StudentID, err)
			}
		}

		return nil
	})
}

func (s *Store) ListActive(ctx context.Context) ([]roster.Entry, error) {
	return s.list(ctx, `WHERE active = ?`, true)
}

func (s *Store) List(ctx context.Context) ([]roster.Entry, error) {
	return s.list(ctx, ``)
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]roster.Entry, error) {
	query := s.db.Rebind(`SELECT student_id, class_id, active, updated_at FROM roster_entries ` +
		where + ` ORDER BY student_id ASC`)

	var rows []struct {
		StudentID string    `db:"student_id"`
		ClassID   string    `db:"class_id"`
		Active    bool      `db:"active"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}

	entries := make([]roster.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, roster.Entry{
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			Active:    r.Active,
			UpdatedAt: r.UpdatedAt.UTC(),
		})
	}

	return entries, nil
}
