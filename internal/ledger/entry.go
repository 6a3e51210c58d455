// Package ledger is the append-only cash book and the reports folded from it.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

var ErrInvalidEntry = errors.New("invalid cash entry")

type Category string

const (
	CategoryRevenue Category = "revenue"
	CategoryExpense Category = "expense"
)

func (c Category) Valid() bool {
	return c == CategoryRevenue || c == CategoryExpense
}

type Source string

const (
	SourceManual  Source = "manual"
	SourceInvoice Source = "invoice"
)

// SubcategoryTuition tags the revenue booked for a paid invoice.
const SubcategoryTuition = "mensalidade"

// Entry is one line of the cash book. Entries are never updated or removed.
type Entry struct {
	ID          uuid.UUID
	Date        time.Time
	Category    Category
	Subcategory string
	Amount      money.Money
	Source      Source
	InvoiceID   *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// PaymentEntry is the revenue entry booked for a confirmed invoice payment.
func PaymentEntry(invoiceID uuid.UUID, date time.Time, amount money.Money, description string, createdAt time.Time) *Entry {
	id := invoiceID

	return &Entry{
		ID:          uuid.New(),
		Date:        date,
		Category:    CategoryRevenue,
		Subcategory: SubcategoryTuition,
		Amount:      amount,
		Source:      SourceInvoice,
		InvoiceID:   &id,
		Description: description,
		CreatedAt:   createdAt,
	}
}
