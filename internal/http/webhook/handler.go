// Package webhook receives payment notifications from the payment gateway.
package webhook

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

type Handler struct {
	svc    *invoice.Service
	secret []byte
	issuer string
}

func NewHandler(svc *invoice.Service, secret, issuer string) *Handler {
	return &Handler{svc: svc, secret: []byte(secret), issuer: issuer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(Authenticator(h.secret, h.issuer))
	r.Post("/payments", h.payment)
}

// paymentNotification identifies the invoice by id or by the boleto's nosso
// número, whichever the gateway knows.
type paymentNotification struct {
	InvoiceID        *uuid.UUID `json:"invoice_id,omitempty" validate:"required_without=NossoNumero"`
	NossoNumero      string     `json:"nosso_numero,omitempty" validate:"omitempty,numeric,len=17"`
	PaymentReference string     `json:"payment_reference" validate:"required"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

type paymentAck struct {
	InvoiceID        uuid.UUID      `json:"invoice_id"`
	Status           invoice.Status `json:"status"`
	PaymentReference string         `json:"payment_reference"`
	PaidAmount       *money.Money   `json:"paid_amount,omitempty"`
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	var req paymentNotification
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	var id uuid.UUID

	if req.InvoiceID != nil {
		id = *req.InvoiceID
	} else {
		inv, err := h.svc.FindByNossoNumero(r.Context(), req.NossoNumero)
		if err != nil {
			render.Error(w, err)
			return
		}

		id = inv.ID
	}

	params := invoice.ConfirmParams{InvoiceID: id, PaymentReference: req.PaymentReference}
	if req.PaidAt != nil {
		params.PaidAt = *req.PaidAt
	}

	inv, err := h.svc.ConfirmPayment(r.Context(), params)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, paymentAck{
		InvoiceID:        inv.ID,
		Status:           inv.Status,
		PaymentReference: inv.PaymentReference,
		PaidAmount:       inv.PaidAmount,
	})
}
