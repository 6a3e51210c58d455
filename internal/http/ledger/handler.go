package ledger

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/export"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

type Handler struct {
	svc    *ledger.Service
	export *export.Service
}

func NewHandler(svc *ledger.Service, exportSvc *export.Service) *Handler {
	return &Handler{svc: svc, export: exportSvc}
}

// Routes mounts the cash book under /ledger.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/entries", h.record)
	r.Get("/entries", h.list)
	r.Get("/export", h.exportCSV)
	r.Get("/export/summary", h.exportSummary)
}

// ReportRoutes mounts the folded reports under /reports.
func (h *Handler) ReportRoutes(r chi.Router) {
	r.Get("/dre", h.dre)
	r.Get("/balance", h.balance)
	r.Get("/cashflow", h.cashflow)
}

type recordRequest struct {
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string      `json:"category" validate:"required,oneof=revenue expense"`
	Subcategory string      `json:"subcategory" validate:"required"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	date, _ := time.Parse(time.DateOnly, req.Date)

	e, err := h.svc.Record(r.Context(), ledger.ManualEntryParams{
		Date:        date,
		Category:    ledger.Category(req.Category),
		Subcategory: req.Subcategory,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.List(r.Context(), rng)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(entries))
}

func (h *Handler) dre(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	d, err := h.svc.DRE(r.Context(), rng)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, d)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	b, err := h.svc.BalanceSummary(r.Context(), rng)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, b)
}

func (h *Handler) cashflow(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	cf, err := h.svc.Cashflow(r.Context(), rng)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, cf)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	// Buffered so a failure can still be answered with a JSON error.
	var buf bytes.Buffer
	if _, err := h.export.WriteCSV(r.Context(), &buf, rng); err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"livro-caixa_%s_%s.csv\"",
		rng.From.Format("20060102"), rng.To.Format("20060102")))

	_, _ = buf.WriteTo(w)
}

type summaryResponse struct {
	Entries   []entryResponse `json:"entries"`
	EmailBody string          `json:"email_body"`
}

func (h *Handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}

	entries, err := h.export.Entries(r.Context(), rng)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, summaryResponse{
		Entries:   toResponseList(entries),
		EmailBody: h.export.GenerateEmailBody(entries),
	})
}

func dateRange(w http.ResponseWriter, r *http.Request) (period.DateRange, bool) {
	q := r.URL.Query()

	rng, err := period.ParseRange(q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		render.Error(w, render.BadRequest("%v", err))
		return period.DateRange{}, false
	}

	return rng, true
}
