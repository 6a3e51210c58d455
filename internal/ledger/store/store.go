package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type entryRow struct {
	ID          uuid.UUID  `db:"id"`
	EntryDate   time.Time  `db:"entry_date"`
	Category    string     `db:"category"`
	Subcategory string     `db:"subcategory"`
	Amount      int64      `db:"amount"`
	Source      string     `db:"source"`
	InvoiceID   *uuid.UUID `db:"invoice_id"`
	Description string     `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
}

// InsertEntry writes e through any sqlx handle, so callers can book an entry
// inside their own transaction.
func InsertEntry(ctx context.Context, ext sqlx.ExtContext, e *ledger.Entry) error {
	query := ext.Rebind(`
		INSERT INTO cash_entries (id, entry_date, category, subcategory, amount, source, invoice_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := ext.ExecContext(ctx, query,
		e.ID,
		e.Date,
		string(e.Category),
		e.Subcategory,
		e.Amount.Cents,
		string(e.Source),
		e.InvoiceID,
		e.Description,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting cash entry: %w", err)
	}

	return nil
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	return InsertEntry(ctx, s.db, e)
}

func (s *Store) ListEntries(ctx context.Context, r period.DateRange) ([]*ledger.Entry, error) {
	return listEntries(ctx, s.db, r)
}

// Snapshot reads the opening balance and the range's entries in one read-only
// transaction. Repeatable read keeps both statements on the same snapshot in
// PostgreSQL; SQLite transactions already read from a single snapshot.
func (s *Store) Snapshot(ctx context.Context, r period.DateRange) (money.Money, []*ledger.Entry, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return money.Money{}, nil, fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback()

	opening, err := balanceBefore(ctx, tx, r.From)
	if err != nil {
		return money.Money{}, nil, err
	}

	entries, err := listEntries(ctx, tx, r)
	if err != nil {
		return money.Money{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return money.Money{}, nil, fmt.Errorf("closing snapshot tx: %w", err)
	}

	return opening, entries, nil
}

func listEntries(ctx context.Context, q sqlx.ExtContext, r period.DateRange) ([]*ledger.Entry, error) {
	query := q.Rebind(`
		SELECT id, entry_date, category, subcategory, amount, source, invoice_id, description, created_at
		FROM cash_entries
		WHERE entry_date >= ? AND entry_date < ?
		ORDER BY entry_date ASC, id ASC`)

	var rows []entryRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, r.From, r.EndExclusive()); err != nil {
		return nil, fmt.Errorf("listing cash entries: %w", err)
	}

	entries := make([]*ledger.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &ledger.Entry{
			ID:          row.ID,
			Date:        period.Date(row.EntryDate, nil),
			Category:    ledger.Category(row.Category),
			Subcategory: row.Subcategory,
			Amount:      money.New(row.Amount),
			Source:      ledger.Source(row.Source),
			InvoiceID:   row.InvoiceID,
			Description: row.Description,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}

	return entries, nil
}

// balanceBefore is revenue minus expense over every entry dated before day.
func balanceBefore(ctx context.Context, q sqlx.ExtContext, day time.Time) (money.Money, error) {
	query := q.Rebind(`
		SELECT CAST(COALESCE(SUM(CASE WHEN category = 'revenue' THEN amount ELSE -amount END), 0) AS BIGINT)
		FROM cash_entries
		WHERE entry_date < ?`)

	var cents int64
	if err := q.QueryRowxContext(ctx, query, day).Scan(&cents); err != nil {
		return money.Money{}, fmt.Errorf("summing balance before %s: %w", day.Format(time.DateOnly), err)
	}

	return money.New(cents), nil
}
