// Package settlement applies bank return files: each paid boleto listed by
// the bank is confirmed against its invoice through the same idempotent path
// as the payment webhook.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

//go:generate mockgen -source=service.go -destination=invoices_mock.go -package=settlement
type Invoices interface {
	FindByNossoNumero(ctx context.Context, nossoNumero string) (*invoice.Invoice, error)
	ConfirmPayment(ctx context.Context, params invoice.ConfirmParams) (*invoice.Invoice, error)
}

type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeConflict  Outcome = "conflict"
	OutcomeError     Outcome = "error"
)

type RowResult struct {
	Line        int          `json:"line"`
	NossoNumero string       `json:"nosso_numero"`
	Reference   string       `json:"reference"`
	InvoiceID   *uuid.UUID   `json:"invoice_id,omitempty"`
	Outcome     Outcome      `json:"outcome"`
	BankAmount  money.Money  `json:"bank_amount"`
	Booked      *money.Money `json:"booked_amount,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type Report struct {
	Rows      []RowResult `json:"rows"`
	Confirmed int         `json:"confirmed"`
	Duplicate int         `json:"duplicate"`
	Conflict  int         `json:"conflict"`
	Errors    int         `json:"errors"`
}

type Service struct {
	invoices Invoices
	loc      *time.Location
}

// NewService reads the dates in return files as calendar days in loc.
func NewService(invoices Invoices, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{invoices: invoices, loc: loc}
}

// Import parses the return file and confirms every row. Row failures are
// reported, never fatal; re-importing the same file only yields duplicates.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Report, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{Rows: make([]RowResult, 0, len(rows))}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := s.apply(ctx, row)

		switch res.Outcome {
		case OutcomeConfirmed:
			report.Confirmed++
		case OutcomeDuplicate:
			report.Duplicate++
		case OutcomeConflict:
			report.Conflict++
		default:
			report.Errors++
		}

		report.Rows = append(report.Rows, res)
	}

	slog.Info("bank return imported",
		"rows", len(rows),
		"confirmed", report.Confirmed,
		"duplicate", report.Duplicate,
		"conflict", report.Conflict,
		"errors", report.Errors)

	return report, nil
}

func (s *Service) apply(ctx context.Context, row Row) RowResult {
	res := RowResult{
		Line:        row.Line,
		NossoNumero: row.NossoNumero,
		Reference:   row.Reference,
		BankAmount:  row.Amount,
	}

	inv, err := s.invoices.FindByNossoNumero(ctx, row.NossoNumero)
	if err != nil {
		res.Outcome = OutcomeError
		res.Error = err.Error()

		return res
	}

	res.InvoiceID = &inv.ID

	if inv.Status == invoice.StatusPaid && inv.PaymentReference == row.Reference {
		res.Outcome = OutcomeDuplicate
		res.Booked = inv.PaidAmount

		return res
	}

	paid, err := s.invoices.ConfirmPayment(ctx, invoice.ConfirmParams{
		InvoiceID:        inv.ID,
		PaymentReference: row.Reference,
		PaidAt:           time.Date(row.PaidAt.Year(), row.PaidAt.Month(), row.PaidAt.Day(), 0, 0, 0, 0, s.loc),
	})

	switch {
	case err == nil:
		res.Outcome = OutcomeConfirmed
		res.Booked = paid.PaidAmount

		if paid.PaidAmount != nil && !paid.PaidAmount.Equal(row.Amount) {
			slog.Warn("bank paid a different amount than accrued",
				"invoice_id", inv.ID, "bank", row.Amount.String(), "booked", paid.PaidAmount.String())
		}
	case errors.Is(err, invoice.ErrPaymentReferenceConflict):
		res.Outcome = OutcomeConflict
		res.Error = err.Error()
	default:
		res.Outcome = OutcomeError
		res.Error = fmt.Sprintf("confirming payment: %v", err)
	}

	return res
}
