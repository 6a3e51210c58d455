package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Category    ledger.Category `json:"category"`
	Subcategory string          `json:"subcategory"`
	Amount      money.Money     `json:"amount"`
	Source      ledger.Source   `json:"source"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(time.DateOnly),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Amount:      e.Amount,
		Source:      e.Source,
		InvoiceID:   e.InvoiceID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}
