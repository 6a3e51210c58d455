package invoice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

var (
	ErrNotFound                 = errors.New("invoice not found")
	ErrInvoiceCancelled         = errors.New("invoice is cancelled")
	ErrCannotCancelPaidInvoice  = errors.New("cannot cancel a paid invoice")
	ErrPaymentReferenceConflict = errors.New("invoice already paid with a different reference")
	ErrInvalidPayment           = errors.New("invalid payment confirmation")
	ErrIssuerChanged            = errors.New("issuer settings changed since the boleto was issued")
)

// PaymentReferenceConflictError carries both references so an operator can
// look into the double payment.
type PaymentReferenceConflictError struct {
	InvoiceID uuid.UUID
	Existing  string
	Attempted string
}

func (e *PaymentReferenceConflictError) Error() string {
	return fmt.Sprintf("invoice %s already paid with reference %q, got %q", e.InvoiceID, e.Existing, e.Attempted)
}

func (e *PaymentReferenceConflictError) Unwrap() error {
	return ErrPaymentReferenceConflict
}

// IsValidation reports input the caller has to fix before retrying.
func IsValidation(err error) bool {
	return errors.Is(err, plan.ErrInvalidPlanParameters) ||
		errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, period.ErrInvalidPeriod) ||
		errors.Is(err, money.ErrInvalidAmount) ||
		errors.Is(err, money.ErrNegativeResult) ||
		boleto.IsValidation(err)
}

// IsConflict reports a state the engine refuses to resolve on its own.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPaymentReferenceConflict) ||
		errors.Is(err, ErrInvoiceCancelled) ||
		errors.Is(err, ErrCannotCancelPaidInvoice) ||
		errors.Is(err, ErrIssuerChanged)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, plan.ErrNoPlanForScope)
}
