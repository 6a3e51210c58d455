package invoice

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type Handler struct {
	svc *invoice.Service
	gen *invoice.Generator
}

func NewHandler(svc *invoice.Service, gen *invoice.Generator) *Handler {
	return &Handler{svc: svc, gen: gen}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/generate", h.generate)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/boleto", h.boleto)
	r.Post("/{id}/payment", h.payment)
	r.Post("/{id}/cancel", h.cancel)
}

type generateRequest struct {
	Period string `json:"period" validate:"required,period"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	res, err := h.gen.GenerateForPeriod(r.Context(), period.MustParse(req.Period))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toGenerationResponse(res))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := invoice.ListFilter{StudentID: q.Get("student_id")}

	if s := q.Get("period"); s != "" {
		p, err := period.Parse(s)
		if err != nil {
			render.Error(w, render.BadRequest("invalid period %q", s))
			return
		}

		filter.Period = &p
	}

	if s := q.Get("status"); s != "" {
		status := invoice.Status(s)
		if !status.Valid() {
			render.Error(w, render.BadRequest("invalid status %q", s))
			return
		}

		filter.Status = &status
	}

	invs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toStatementResponse(st))
}

func (h *Handler) boleto(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Reissue(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, b)
}

type paymentRequest struct {
	PaymentReference string     `json:"payment_reference" validate:"required"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
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

	render.JSON(w, http.StatusOK, toResponse(inv))
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	inv, err := h.svc.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(inv))
}

func invoiceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, render.BadRequest("invalid id"))
		return uuid.Nil, false
	}

	return id, true
}
