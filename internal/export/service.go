// Package export renders the cash book for the accountant: a semicolon CSV
// that opens in a pt-BR spreadsheet and a plain-text summary for e-mail.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

var header = []string{"data", "categoria", "subcategoria", "valor", "origem", "fatura", "descricao"}

// Service handles the export of cash entries.
type Service struct {
	ledger *ledger.Service
}

func NewService(ledgerService *ledger.Service) *Service {
	return &Service{ledger: ledgerService}
}

// Entries returns the cash entries dated inside r in ledger order.
func (s *Service) Entries(ctx context.Context, r period.DateRange) ([]*ledger.Entry, error) {
	entries, err := s.ledger.List(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

// WriteCSV writes the entries dated inside r and returns how many were written.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, r period.DateRange) (int, error) {
	entries, err := s.Entries(ctx, r)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		invoiceID := ""
		if e.InvoiceID != nil {
			invoiceID = e.InvoiceID.String()
		}

		record := []string{
			e.Date.Format(time.DateOnly),
			categoryLabel(e.Category),
			e.Subcategory,
			decimalComma(e.Amount),
			string(e.Source),
			invoiceID,
			e.Description,
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing entry %s: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(entries), nil
}

// GenerateEmailBody lists the entries one per line, followed by the totals.
func (s *Service) GenerateEmailBody(entries []*ledger.Entry) string {
	var (
		sb      strings.Builder
		revenue = money.Zero()
		expense = money.Zero()
	)

	for _, e := range entries {
		sign := "+"

		if e.Category == ledger.CategoryExpense {
			sign = "-"
			expense = expense.Add(e.Amount)
		} else {
			revenue = revenue.Add(e.Amount)
		}

		desc := e.Description
		if desc == "" {
			desc = "Sem descrição"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n",
			e.Date.Format("02/01/2006"), e.Subcategory, sign, e.Amount.Format(), desc)
	}

	fmt.Fprintf(&sb, "\nReceitas: %s\nDespesas: %s\nSaldo: %s\n",
		revenue.Format(), expense.Format(), revenue.Sub(expense).Format())

	return sb.String()
}

func categoryLabel(c ledger.Category) string {
	if c == ledger.CategoryExpense {
		return "despesa"
	}

	return "receita"
}

// decimalComma renders 1021.68 as "1021,68".
func decimalComma(m money.Money) string {
	return strings.Replace(m.String(), ".", ",", 1)
}
