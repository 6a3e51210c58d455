// Package invoice generates tuition invoices, accrues what they are worth on
// a given day and drives them through pending, paid and cancelled.
package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"

	// StatusOverdue is never stored. See Invoice.View.
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}

	return false
}

// Terms is the copy of the plan parameters taken when the invoice was
// generated. Later plan versions never reach an existing invoice.
type Terms struct {
	LateFeePercent       money.Percent
	DailyInterestPercent money.Percent
	EarlyDiscountPercent money.Percent
}

func TermsFromPlan(t plan.Terms) Terms {
	return Terms{
		LateFeePercent:       t.LateFeePercent,
		DailyInterestPercent: t.DailyInterestPercent,
		EarlyDiscountPercent: t.EarlyDiscountPercent,
	}
}

type Invoice struct {
	ID          uuid.UUID
	StudentID   string
	ClassID     string
	PlanID      uuid.UUID
	PlanVersion int
	Period      period.Period
	BaseAmount  money.Money
	Terms       Terms
	// DueDate is a calendar date at midnight UTC.
	DueDate        time.Time
	Status         Status
	SequenceNumber int64
	Boleto         boleto.Boleto

	PaidAt           *time.Time
	PaymentReference string
	PaidAmount       *money.Money

	CancelledAt  *time.Time
	CancelReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOverdue reports whether a pending invoice is past its due date on the
// given calendar date.
func (i *Invoice) IsOverdue(today time.Time) bool {
	return i.Status == StatusPending && period.Date(today, nil).After(i.DueDate)
}

// View is the status shown to people: pending invoices past due read as
// overdue.
func (i *Invoice) View(today time.Time) Status {
	if i.IsOverdue(today) {
		return StatusOverdue
	}

	return i.Status
}

// Statement is an invoice together with what it is worth on AsOf.
type Statement struct {
	Invoice   *Invoice
	AsOf      time.Time
	Status    Status
	AmountDue money.Money
	Overdue   bool
}

// Issuer identifies the school's collection agreement with the bank.
type Issuer struct {
	BankCode      int
	AgreementCode int
}
