package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/database"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type planRow struct {
	ID                   uuid.UUID `db:"id"`
	Scope                string    `db:"scope"`
	ScopeID              string    `db:"scope_id"`
	Version              int       `db:"version"`
	EffectiveFrom        string    `db:"effective_from"`
	BaseAmount           int64     `db:"base_amount"`
	DueDay               int       `db:"due_day"`
	LateFeePercent       string    `db:"late_fee_percent"`
	DailyInterestPercent string    `db:"daily_interest_percent"`
	EarlyDiscountPercent string    `db:"early_discount_percent"`
	CreatedAt            time.Time `db:"created_at"`
}

func (r planRow) toPlan() (*plan.Plan, error) {
	from, err := period.Parse(r.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	lateFee, err := money.ParsePercent(r.LateFeePercent)
	if err != nil {
		return nil, err
	}

	interest, err := money.ParsePercent(r.DailyInterestPercent)
	if err != nil {
		return nil, err
	}

	discount, err := money.ParsePercent(r.EarlyDiscountPercent)
	if err != nil {
		return nil, err
	}

	return &plan.Plan{
		ID:            r.ID,
		Scope:         plan.Scope(r.Scope),
		ScopeID:       r.ScopeID,
		Version:       r.Version,
		EffectiveFrom: from,
		Terms: plan.Terms{
			BaseAmount:           money.New(r.BaseAmount),
			DueDay:               r.DueDay,
			LateFeePercent:       lateFee,
			DailyInterestPercent: interest,
			EarlyDiscountPercent: discount,
		},
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

const selectPlanColumns = `
	id, scope, scope_id, version, effective_from, base_amount, due_day,
	late_fee_percent, daily_interest_percent, early_discount_percent, created_at
`

// generationLock names the boleto_sequences row invoice generation locks
// while it allocates a nosso número and inserts the invoice.
const generationLock = "nosso_numero"

// CreatePlan assigns the next version and persists p, unless the scope already
// has invoices for p.EffectiveFrom or later. The check and the insert run under
// the generation lock, so no invoice can land between them.
func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		lock := tx.Rebind(`UPDATE boleto_sequences SET last_value = last_value WHERE name = ?`)
		if _, err := tx.ExecContext(ctx, lock, generationLock); err != nil {
			return fmt.Errorf("acquiring generation lock: %w", err)
		}

		latest, ok, err := latestInvoicedPeriod(ctx, tx, p.Scope, p.ScopeID)
		if err != nil {
			return err
		}

		if ok && !p.EffectiveFrom.After(latest) {
			return fmt.Errorf("%w: %s invoiced through %s", plan.ErrPlanLocked, p.ScopeID, latest)
		}

		query := tx.Rebind(`
			INSERT INTO tuition_plans (id, scope, scope_id, version, effective_from, base_amount, due_day,
				late_fee_percent, daily_interest_percent, early_discount_percent, created_at)
			VALUES (?, ?, ?,
				(SELECT COALESCE(MAX(version), 0) + 1 FROM tuition_plans WHERE scope = ? AND scope_id = ?),
				?, ?, ?, ?, ?, ?, ?)
			RETURNING version
		`)

		err = tx.QueryRowxContext(ctx, query,
			p.ID,
			string(p.Scope),
			p.ScopeID,
			string(p.Scope),
			p.ScopeID,
			p.EffectiveFrom.String(),
			p.Terms.BaseAmount.Cents,
			p.Terms.DueDay,
			p.Terms.LateFeePercent.String(),
			p.Terms.DailyInterestPercent.String(),
			p.Terms.EarlyDiscountPercent.String(),
			p.CreatedAt,
		).Scan(&p.Version)
		if err != nil {
			return fmt.Errorf("creating plan: %w", err)
		}

		return nil
	})
}

func (s *Store) FindEffective(ctx context.Context, scope plan.Scope, scopeID string, p period.Period) (*plan.Plan, error) {
	query := s.db.Rebind(`SELECT ` + selectPlanColumns + `
		FROM tuition_plans
		WHERE scope = ? AND scope_id = ? AND effective_from <= ?
		ORDER BY effective_from DESC, version DESC
		LIMIT 1`)

	var row planRow
	if err := s.db.GetContext(ctx, &row, query, string(scope), scopeID, p.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s in %s", plan.ErrNoPlanForScope, scope, scopeID, p)
		}

		return nil, fmt.Errorf("finding effective plan: %w", err)
	}

	return row.toPlan()
}

func (s *Store) ListVersions(ctx context.Context, scope plan.Scope, scopeID string) ([]*plan.Plan, error) {
	query := s.db.Rebind(`SELECT ` + selectPlanColumns + `
		FROM tuition_plans
		WHERE scope = ? AND scope_id = ?
		ORDER BY version ASC`)

	var rows []planRow
	if err := s.db.SelectContext(ctx, &rows, query, string(scope), scopeID); err != nil {
		return nil, fmt.Errorf("listing plan versions: %w", err)
	}

	plans := make([]*plan.Plan, 0, len(rows))

	for _, r := range rows {
		p, err := r.toPlan()
		if err != nil {
			return nil, fmt.Errorf("decoding plan %s: %w", r.ID, err)
		}

		plans = append(plans, p)
	}

	return plans, nil
}

func (s *Store) LatestInvoicedPeriod(ctx context.Context, scope plan.Scope, scopeID string) (period.Period, bool, error) {
	return latestInvoicedPeriod(ctx, s.db, scope, scopeID)
}

func latestInvoicedPeriod(ctx context.Context, q sqlx.ExtContext, scope plan.Scope, scopeID string) (period.Period, bool, error) {
	query := q.Rebind(`
		SELECT MAX(i.period)
		FROM invoices i
		JOIN tuition_plans p ON p.id = i.plan_id
		WHERE p.scope = ? AND p.scope_id = ?`)

	var latest sql.NullString
	if err := q.QueryRowxContext(ctx, query, string(scope), scopeID).Scan(&latest); err != nil {
		return period.Period{}, false, fmt.Errorf("finding latest invoiced period: %w", err)
	}

	if !latest.Valid {
		return period.Period{}, false, nil
	}

	p, err := period.Parse(latest.String)
	if err != nil {
		return period.Period{}, false, err
	}

	return p, true, nil
}
