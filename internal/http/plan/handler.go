package plan

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

type Handler struct {
	registry *plan.Registry
}

func NewHandler(registry *plan.Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upsert)
	r.Get("/{scope}/{scopeID}", h.get)
	r.Get("/{scope}/{scopeID}/history", h.history)
}

type upsertRequest struct {
	Scope                string        `json:"scope" validate:"required,oneof=class student"`
	ScopeID              string        `json:"scope_id" validate:"required"`
	EffectiveFrom        string        `json:"effective_from" validate:"required,period"`
	BaseAmount           money.Money   `json:"base_amount"`
	DueDay               int           `json:"due_day" validate:"min=1,max=31"`
	LateFeePercent       money.Percent `json:"late_fee_percent"`
	DailyInterestPercent money.Percent `json:"daily_interest_percent"`
	EarlyDiscountPercent money.Percent `json:"early_discount_percent"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	p, err := h.registry.Upsert(r.Context(), plan.UpsertParams{
		Scope:         plan.Scope(req.Scope),
		ScopeID:       req.ScopeID,
		EffectiveFrom: period.MustParse(req.EffectiveFrom),
		Terms: plan.Terms{
			BaseAmount:           req.BaseAmount,
			DueDay:               req.DueDay,
			LateFeePercent:       req.LateFeePercent,
			DailyInterestPercent: req.DailyInterestPercent,
			EarlyDiscountPercent: req.EarlyDiscountPercent,
		},
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := period.Parse(r.URL.Query().Get("period"))
	if err != nil {
		render.Error(w, err)
		return
	}

	found, err := h.registry.Get(r.Context(), plan.Scope(chi.URLParam(r, "scope")), chi.URLParam(r, "scopeID"), p)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(found))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	plans, err := h.registry.History(r.Context(), plan.Scope(chi.URLParam(r, "scope")), chi.URLParam(r, "scopeID"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(plans))
}
