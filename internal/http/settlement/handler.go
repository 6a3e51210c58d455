package settlement

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/settlement"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *settlement.Service
}

func NewHandler(svc *settlement.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importReturn)
}

func (h *Handler) importReturn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.Error(w, render.BadRequest("failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, render.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	report, err := h.svc.Import(r.Context(), file)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, report)
}
