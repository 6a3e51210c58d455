package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNossoNumero(ctx context.Context, nossoNumero string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	ExistsForPeriod(ctx context.Context, studentID string, p period.Period) (bool, error)
	// CancelPending moves a pending invoice to cancelled; false means the
	// invoice was no longer pending.
	CancelPending(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)

	BeginTx(ctx context.Context) (Tx, error)
}

// Tx groups the writes that must land together: sequence allocation with
// the invoice insert, and the paid transition with its cash entry.
type Tx interface {
	NextSequence(ctx context.Context) (int64, error)
	// InsertInvoice returns false when (student, period) already has an invoice.
	InsertInvoice(ctx context.Context, inv *Invoice) (bool, error)
	// MarkPaid moves a pending invoice to paid; false means it was no longer pending.
	MarkPaid(ctx context.Context, id uuid.UUID, p Payment) (bool, error)
	AppendCashEntry(ctx context.Context, e *ledger.Entry) error
	Commit() error
	Rollback() error
}

// GrantFinder looks up the discount grant in force for a billed period.
type GrantFinder interface {
	ActiveFor(ctx context.Context, studentID string, p period.Period) (*discount.Grant, error)
}

type Payment struct {
	Reference string
	PaidAt    time.Time
	Amount    money.Money
	At        time.Time
}

type ListFilter struct {
	Period    *period.Period
	StudentID string
	Status    *Status
}

type ConfirmParams struct {
	InvoiceID        uuid.UUID
	PaymentReference string
	PaidAt           time.Time
}

type Service struct {
	repo   Repository
	grants GrantFinder
	codec  *boleto.Codec
	issuer Issuer
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo Repository, grants GrantFinder, codec *boleto.Codec, issuer Issuer, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		repo:   repo,
		grants: grants,
		codec:  codec,
		issuer: issuer,
		loc:    loc,
		now:    time.Now,
	}
}

// WithClock replaces the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return period.Date(s.now(), s.loc)
}

// casAttempts bounds how often a lost compare-and-set is re-evaluated.
// After one loss the row is terminal, so the second read always settles it.
const casAttempts = 3

// ConfirmPayment records a payment notification. Replays with the same
// reference are no-ops; a different reference on a paid invoice is a
// conflict and is never merged.
func (s *Service) ConfirmPayment(ctx context.Context, params ConfirmParams) (*Invoice, error) {
	if params.PaymentReference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrInvalidPayment)
	}

	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	for range casAttempts {
		inv, err := s.repo.GetInvoice(ctx, params.InvoiceID)
		if err != nil {
			return nil, err
		}

		if done, err := settledPayment(inv, params.PaymentReference); done {
			if err != nil {
				return nil, err
			}

			return inv, nil
		}

		paid, err := s.pay(ctx, inv, params.PaymentReference, paidAt)
		if err != nil {
			return nil, err
		}

		if paid {
			return inv, nil
		}

		slog.Info("payment lost compare-and-set, re-reading invoice",
			"invoice_id", inv.ID, "reference", params.PaymentReference)
	}

	return nil, fmt.Errorf("confirming payment for invoice %s: status kept changing", params.InvoiceID)
}

// settledPayment applies the rules for an invoice that is no longer pending.
func settledPayment(inv *Invoice, reference string) (bool, error) {
	switch inv.Status {
	case StatusPaid:
		if inv.PaymentReference == reference {
			return true, nil
		}

		return true, &PaymentReferenceConflictError{
			InvoiceID: inv.ID,
			Existing:  inv.PaymentReference,
			Attempted: reference,
		}
	case StatusCancelled:
		return true, fmt.Errorf("%w: %s", ErrInvoiceCancelled, inv.ID)
	}

	return false, nil
}

func (s *Service) pay(ctx context.Context, inv *Invoice, reference string, paidAt time.Time) (bool, error) {
	paidDay := period.Date(paidAt, s.loc)

	amount, err := s.amountDue(ctx, inv, paidDay)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	payment := Payment{Reference: reference, PaidAt: paidAt.UTC(), Amount: amount, At: now}

	itx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("begin payment: %w", err)
	}
	defer itx.Rollback()

	ok, err := itx.MarkPaid(ctx, inv.ID, payment)
	if err != nil {
		return false, fmt.Errorf("marking invoice paid: %w", err)
	}

	if !ok {
		return false, nil
	}

	entry := ledger.PaymentEntry(inv.ID, paidDay, amount,
		fmt.Sprintf("Mensalidade %s aluno %s (%s)", inv.Period, inv.StudentID, reference), now)

	if err := itx.AppendCashEntry(ctx, entry); err != nil {
		return false, fmt.Errorf("booking payment: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return false, fmt.Errorf("commit payment: %w", err)
	}

	inv.Status = StatusPaid
	inv.PaidAt = &payment.PaidAt
	inv.PaymentReference = reference
	inv.PaidAmount = &amount
	inv.UpdatedAt = now

	return true, nil
}

func (s *Service) amountDue(ctx context.Context, inv *Invoice, day time.Time) (money.Money, error) {
	var grant *discount.Grant

	if s.grants != nil {
		g, err := s.grants.ActiveFor(ctx, inv.StudentID, inv.Period)
		if err != nil {
			return money.Money{}, err
		}

		grant = g
	}

	return AmountDueAsOf(inv, grant, day)
}

// Cancel is allowed while the invoice is pending, overdue included.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Invoice, error) {
	for range casAttempts {
		inv, err := s.repo.GetInvoice(ctx, id)
		if err != nil {
			return nil, err
		}

		switch inv.Status {
		case StatusPaid:
			return nil, fmt.Errorf("%w: %s", ErrCannotCancelPaidInvoice, id)
		case StatusCancelled:
			return nil, fmt.Errorf("%w: %s", ErrInvoiceCancelled, id)
		}

		at := s.now().UTC()

		ok, err := s.repo.CancelPending(ctx, id, reason, at)
		if err != nil {
			return nil, fmt.Errorf("cancelling invoice: %w", err)
		}

		if ok {
			inv.Status = StatusCancelled
			inv.CancelledAt = &at
			inv.CancelReason = reason
			inv.UpdatedAt = at

			return inv, nil
		}
	}

	return nil, fmt.Errorf("cancelling invoice %s: status kept changing", id)
}

// Get returns the invoice with what it is worth today. Settled invoices owe
// nothing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Statement, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.statement(ctx, inv, s.today())
}

func (s *Service) statement(ctx context.Context, inv *Invoice, today time.Time) (*Statement, error) {
	st := &Statement{
		Invoice:   inv,
		AsOf:      today,
		Status:    inv.View(today),
		AmountDue: money.Zero(),
		Overdue:   inv.IsOverdue(today),
	}

	if inv.Status != StatusPending {
		return st, nil
	}

	amount, err := s.amountDue(ctx, inv, today)
	if err != nil {
		return nil, err
	}

	st.AmountDue = amount

	return st, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// FindByNossoNumero resolves the invoice a bank return line refers to.
func (s *Service) FindByNossoNumero(ctx context.Context, nossoNumero string) (*Invoice, error) {
	return s.repo.FindByNossoNumero(ctx, nossoNumero)
}

// Reissue recomputes the boleto from the stored invoice. It never creates a
// second payable: the result must match what was issued.
func (s *Service) Reissue(ctx context.Context, id uuid.UUID) (boleto.Boleto, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return boleto.Boleto{}, err
	}

	if inv.Status == StatusCancelled {
		return boleto.Boleto{}, fmt.Errorf("%w: %s", ErrInvoiceCancelled, id)
	}

	b, err := s.codec.Encode(s.issuer.AgreementCode, s.issuer.BankCode, inv.DueDate, inv.BaseAmount, inv.SequenceNumber)
	if err != nil {
		return boleto.Boleto{}, fmt.Errorf("reissuing boleto: %w", err)
	}

	if b != inv.Boleto {
		return boleto.Boleto{}, fmt.Errorf("%w: invoice %s", ErrIssuerChanged, id)
	}

	return b, nil
}
