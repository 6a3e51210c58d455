package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type invoiceResponse struct {
	ID                   uuid.UUID      `json:"id"`
	StudentID            string         `json:"student_id"`
	ClassID              string         `json:"class_id"`
	PlanID               uuid.UUID      `json:"plan_id"`
	PlanVersion          int            `json:"plan_version"`
	Period               period.Period  `json:"period"`
	BaseAmount           money.Money    `json:"base_amount"`
	LateFeePercent       money.Percent  `json:"late_fee_percent"`
	DailyInterestPercent money.Percent  `json:"daily_interest_percent"`
	EarlyDiscountPercent money.Percent  `json:"early_discount_percent"`
	DueDate              string         `json:"due_date"`
	Status               invoice.Status `json:"status"`
	Boleto               boleto.Boleto  `json:"boleto"`
	PaidAt               *time.Time     `json:"paid_at,omitempty"`
	PaymentReference     string         `json:"payment_reference,omitempty"`
	PaidAmount           *money.Money   `json:"paid_amount,omitempty"`
	CancelledAt          *time.Time     `json:"cancelled_at,omitempty"`
	CancelReason         string         `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type statementResponse struct {
	invoiceResponse
	AsOf      string      `json:"as_of"`
	AmountDue money.Money `json:"amount_due"`
	Overdue   bool        `json:"overdue"`
}

type failureResponse struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

type generationResponse struct {
	Period  period.Period     `json:"period"`
	Created []invoiceResponse `json:"created"`
	Skipped []string          `json:"skipped"`
	Failed  []failureResponse `json:"failed"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:                   inv.ID,
		StudentID:            inv.StudentID,
		ClassID:              inv.ClassID,
		PlanID:               inv.PlanID,
		PlanVersion:          inv.PlanVersion,
		Period:               inv.Period,
		BaseAmount:           inv.BaseAmount,
		LateFeePercent:       inv.Terms.LateFeePercent,
		DailyInterestPercent: inv.Terms.DailyInterestPercent,
		EarlyDiscountPercent: inv.Terms.EarlyDiscountPercent,
		DueDate:              inv.DueDate.Format(time.DateOnly),
		Status:               inv.Status,
		Boleto:               inv.Boleto,
		PaidAt:               inv.PaidAt,
		PaymentReference:     inv.PaymentReference,
		PaidAmount:           inv.PaidAmount,
		CancelledAt:          inv.CancelledAt,
		CancelReason:         inv.CancelReason,
		CreatedAt:            inv.CreatedAt,
		UpdatedAt:            inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}

func toStatementResponse(st *invoice.Statement) statementResponse {
	resp := statementResponse{
		invoiceResponse: toResponse(st.Invoice),
		AsOf:            st.AsOf.Format(time.DateOnly),
		AmountDue:       st.AmountDue,
		Overdue:         st.Overdue,
	}
	resp.Status = st.Status

	return resp
}

func toGenerationResponse(res *invoice.GenerationResult) generationResponse {
	failed := make([]failureResponse, len(res.Failed))
	for i, f := range res.Failed {
		failed[i] = failureResponse{StudentID: f.StudentID, Reason: f.Reason}
	}

	return generationResponse{
		Period:  res.Period,
		Created: toResponseList(res.Created),
		Skipped: res.Skipped,
		Failed:  failed,
	}
}
