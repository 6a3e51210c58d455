package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/tesouraria/internal/ledger/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

// sequenceName is the counter row nosso número sequences are drawn from.
const sequenceName = "nosso_numero"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type invoiceRow struct {
	ID                   uuid.UUID      `db:"id"`
	StudentID            string         `db:"student_id"`
	ClassID              string         `db:"class_id"`
	PlanID               uuid.UUID      `db:"plan_id"`
	PlanVersion          int            `db:"plan_version"`
	Period               string         `db:"period"`
	BaseAmount           int64          `db:"base_amount"`
	LateFeePercent       string         `db:"late_fee_percent"`
	DailyInterestPercent string         `db:"daily_interest_percent"`
	EarlyDiscountPercent string         `db:"early_discount_percent"`
	DueDate              time.Time      `db:"due_date"`
	Status               string         `db:"status"`
	SequenceNumber       int64          `db:"sequence_number"`
	DigitLine            string         `db:"digit_line"`
	Barcode              string         `db:"barcode"`
	NossoNumero          string         `db:"nosso_numero"`
	PaidAt               *time.Time     `db:"paid_at"`
	PaymentReference     sql.NullString `db:"payment_reference"`
	PaidAmount           sql.NullInt64  `db:"paid_amount"`
	CancelledAt          *time.Time     `db:"cancelled_at"`
	CancelReason         sql.NullString `db:"cancel_reason"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r invoiceRow) toInvoice() (*invoice.Invoice, error) {
	p, err := period.Parse(r.Period)
	if err != nil {
		return nil, err
	}

	var terms invoice.Terms

	for _, f := range []struct {
		raw string
		dst *money.Percent
	}{
		{r.LateFeePercent, &terms.LateFeePercent},
		{r.DailyInterestPercent, &terms.DailyInterestPercent},
		{r.EarlyDiscountPercent, &terms.EarlyDiscountPercent},
	} {
		if *f.dst, err = money.ParsePercent(f.raw); err != nil {
			return nil, err
		}
	}

	inv := &invoice.Invoice{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ClassID:        r.ClassID,
		PlanID:         r.PlanID,
		PlanVersion:    r.PlanVersion,
		Period:         p,
		BaseAmount:     money.New(r.BaseAmount),
		Terms:          terms,
		DueDate:        period.Date(r.DueDate, nil),
		Status:         invoice.Status(r.Status),
		SequenceNumber: r.SequenceNumber,
		Boleto: boleto.Boleto{
			DigitLine:   r.DigitLine,
			Barcode:     r.Barcode,
			NossoNumero: r.NossoNumero,
		},
		PaymentReference: r.PaymentReference.String,
		CancelReason:     r.CancelReason.String,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}

	if r.PaidAt != nil {
		t := r.PaidAt.UTC()
		inv.PaidAt = &t
	}

	if r.PaidAmount.Valid {
		m := money.New(r.PaidAmount.Int64)
		inv.PaidAmount = &m
	}

	if r.CancelledAt != nil {
		t := r.CancelledAt.UTC()
		inv.CancelledAt = &t
	}

	return inv, nil
}

const selectInvoiceColumns = `
	id, student_id, class_id, plan_id, plan_version, period, base_amount,
	late_fee_percent, daily_interest_percent, early_discount_percent, due_date, status,
	sequence_number, digit_line, barcode, nosso_numero, paid_at, payment_reference, paid_amount,
	cancelled_at, cancel_reason, created_at, updated_at
`

func (s *Store) getOne(ctx context.Context, where string, arg any) (*invoice.Invoice, error) {
	query := s.db.Rebind(`SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE ` + where)

	var row invoiceRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return row.toInvoice()
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.getOne(ctx, `id = ?`, id)
}

func (s *Store) FindByNossoNumero(ctx context.Context, nossoNumero string) (*invoice.Invoice, error) {
	return s.getOne(ctx, `nosso_numero = ?`, nossoNumero)
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE 1 = 1`

	var args []any

	if filter.Period != nil {
		query += ` AND period = ?`

		args = append(args, filter.Period.String())
	}

	if filter.StudentID != "" {
		query += ` AND student_id = ?`

		args = append(args, filter.StudentID)
	}

	if filter.Status != nil {
		query += ` AND status = ?`

		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY period ASC, student_id ASC`

	var rows []invoiceRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))

	for _, r := range rows {
		inv, err := r.toInvoice()
		if err != nil {
			return nil, fmt.Errorf("decoding invoice %s: %w", r.ID, err)
		}

		invoices = append(invoices, inv)
	}

	return invoices, nil
}

func (s *Store) ExistsForPeriod(ctx context.Context, studentID string, p period.Period) (bool, error) {
	query := s.db.Rebind(`SELECT COUNT(*) FROM invoices WHERE student_id = ? AND period = ?`)

	var n int
	if err := s.db.GetContext(ctx, &n, query, studentID, p.String()); err != nil {
		return false, fmt.Errorf("checking invoice for %s in %s: %w", studentID, p, err)
	}

	return n > 0, nil
}

func (s *Store) CancelPending(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	query := s.db.Rebind(`
		UPDATE invoices
		SET status = ?, cancelled_at = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`)

	res, err := s.db.ExecContext(ctx, query,
		string(invoice.StatusCancelled), at, reason, at, id, string(invoice.StatusPending))
	if err != nil {
		return false, fmt.Errorf("cancelling invoice: %w", err)
	}

	return affectedOne(res)
}

type invoiceTx struct {
	tx *sqlx.Tx
}

func (s *Store) BeginTx(ctx context.Context) (invoice.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning invoice tx: %w", err)
	}

	return &invoiceTx{tx: tx}, nil
}

func (itx *invoiceTx) Commit() error   { return itx.tx.Commit() }
func (itx *invoiceTx) Rollback() error { return itx.tx.Rollback() }

func (itx *invoiceTx) NextSequence(ctx context.Context) (int64, error) {
	query := itx.tx.Rebind(`
		UPDATE boleto_sequences SET last_value = last_value + 1
		WHERE name = ?
		RETURNING last_value`)

	var seq int64
	if err := itx.tx.QueryRowxContext(ctx, query, sequenceName).Scan(&seq); err != nil {
		return 0, fmt.Errorf("incrementing %s sequence: %w", sequenceName, err)
	}

	return seq, nil
}

func (itx *invoiceTx) InsertInvoice(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	query := itx.tx.Rebind(`
		INSERT INTO invoices (id, student_id, class_id, plan_id, plan_version, period, base_amount,
			late_fee_percent, daily_interest_percent, early_discount_percent, due_date, status,
			sequence_number, digit_line, barcode, nosso_numero, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, period) DO NOTHING`)

	res, err := itx.tx.ExecContext(ctx, query,
		inv.ID,
		inv.StudentID,
		inv.ClassID,
		inv.PlanID,
		inv.PlanVersion,
		inv.Period.String(),
		inv.BaseAmount.Cents,
		inv.Terms.LateFeePercent.String(),
		inv.Terms.DailyInterestPercent.String(),
		inv.Terms.EarlyDiscountPercent.String(),
		inv.DueDate,
		string(inv.Status),
		inv.SequenceNumber,
		inv.Boleto.DigitLine,
		inv.Boleto.Barcode,
		inv.Boleto.NossoNumero,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting invoice: %w", err)
	}

	return affectedOne(res)
}

func (itx *invoiceTx) MarkPaid(ctx context.Context, id uuid.UUID, p invoice.Payment) (bool, error) {
	query := itx.tx.Rebind(`
		UPDATE invoices
		SET status = ?, paid_at = ?, payment_reference = ?, paid_amount = ?, updated_at = ?
		WHERE id = ? AND status = ?`)

	res, err := itx.tx.ExecContext(ctx, query,
		string(invoice.StatusPaid), p.PaidAt, p.Reference, p.Amount.Cents, p.At,
		id, string(invoice.StatusPending))
	if err != nil {
		return false, fmt.Errorf("marking invoice paid: %w", err)
	}

	return affectedOne(res)
}

func (itx *invoiceTx) AppendCashEntry(ctx context.Context, e *ledger.Entry) error {
	return ledgerstore.InsertEntry(ctx, itx.tx, e)
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}
