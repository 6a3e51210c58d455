package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type grantRow struct {
	ID         uuid.UUID `db:"id"`
	StudentID  string    `db:"student_id"`
	Percent    string    `db:"percent"`
	Reason     string    `db:"reason"`
	GrantedBy  string    `db:"granted_by"`
	FromPeriod string    `db:"from_period"`
	ToPeriod   string    `db:"to_period"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r grantRow) toGrant() (*discount.Grant, error) {
	pct, err := money.ParsePercent(r.Percent)
	if err != nil {
		return nil, err
	}

	from, err := period.Parse(r.FromPeriod)
	if err != nil {
		return nil, err
	}

	to, err := period.Parse(r.ToPeriod)
	if err != nil {
		return nil, err
	}

	return &discount.Grant{
		ID:        r.ID,
		StudentID: r.StudentID,
		Percent:   pct,
		Reason:    r.Reason,
		GrantedBy: r.GrantedBy,
		From:      from,
		To:        to,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

const selectGrantColumns = `id, student_id, percent, reason, granted_by, from_period, to_period, created_at`

func (s *Store) CreateGrant(ctx context.Context, g *discount.Grant) error {
	query := s.db.Rebind(`
		INSERT INTO discount_grants (id, student_id, percent, reason, granted_by, from_period, to_period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		g.ID, g.StudentID, g.Percent.String(), g.Reason, g.GrantedBy,
		g.From.String(), g.To.String(), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating discount grant: %w", err)
	}

	return nil
}

func (s *Store) FindActive(ctx context.Context, studentID string, p period.Period) (*discount.Grant, error) {
	query := s.db.Rebind(`SELECT ` + selectGrantColumns + `
		FROM discount_grants
		WHERE student_id = ? AND from_period <= ? AND to_period >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var row grantRow
	if err := s.db.GetContext(ctx, &row, query, studentID, p.String(), p.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding active discount grant: %w", err)
	}

	return row.toGrant()
}

func (s *Store) ListGrants(ctx context.Context, studentID string) ([]*discount.Grant, error) {
	query := `SELECT ` + selectGrantColumns + ` FROM discount_grants`

	var args []any

	if studentID != "" {
		query += ` WHERE student_id = ?`

		args = append(args, studentID)
	}

	query += ` ORDER BY created_at ASC, id ASC`

	var rows []grantRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing discount grants: %w", err)
	}

	grants := make([]*discount.Grant, 0, len(rows))

	for _, r := range rows {
		g, err := r.toGrant()
		if err != nil {
			return nil, fmt.Errorf("decoding grant %s: %w", r.ID, err)
		}

		grants = append(grants, g)
	}

	return grants, nil
}
