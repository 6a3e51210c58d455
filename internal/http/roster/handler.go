package roster

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
)

type Handler struct {
	svc *roster.Service
}

func NewHandler(svc *roster.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Put("/", h.sync)
	r.Get("/", h.list)
}

type entryRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
}

type syncRequest struct {
	Entries []entryRequest `json:"entries" validate:"dive"`
}

type syncResponse struct {
	Active int `json:"active"`
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	entries := make([]roster.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, roster.Entry{StudentID: e.StudentID, ClassID: e.ClassID, Active: true})
	}

	if err := h.svc.Sync(r.Context(), entries); err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, syncResponse{Active: len(entries)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list := h.svc.List
	if r.URL.Query().Get("active") == "true" {
		list = h.svc.Active
	}

	entries, err := list(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	if entries == nil {
		entries = []roster.Entry{}
	}

	render.JSON(w, http.StatusOK, entries)
}
