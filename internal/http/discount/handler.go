package discount

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type Handler struct {
	svc *discount.Service
}

func NewHandler(svc *discount.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.grant)
	r.Get("/", h.list)
}

type grantRequest struct {
	StudentID string        `json:"student_id" validate:"required"`
	Percent   money.Percent `json:"percent"`
	Reason    string        `json:"reason" validate:"required"`
	GrantedBy string        `json:"granted_by" validate:"required"`
	From      string        `json:"from" validate:"required,period"`
	To        string        `json:"to" validate:"required,period"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	g, err := h.svc.Grant(r.Context(), discount.GrantParams{
		StudentID: req.StudentID,
		Percent:   req.Percent,
		Reason:    req.Reason,
		GrantedBy: req.GrantedBy,
		From:      period.MustParse(req.From),
		To:        period.MustParse(req.To),
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, g)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	grants, err := h.svc.List(r.Context(), r.URL.Query().Get("student_id"))
	if err != nil {
		render.Error(w, err)
		return
	}

	if grants == nil {
		grants = []*discount.Grant{}
	}

	render.JSON(w, http.StatusOK, grants)
}
