package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/plan"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/roster"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/settlement"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/webhook"
)

type Handlers struct {
	Roster     *roster.Handler
	Plans      *plan.Handler
	Discounts  *discount.Handler
	Invoices   *invoice.Handler
	Boletos    *boleto.Handler
	Ledger     *ledger.Handler
	Webhooks   *webhook.Handler
	Settlement *settlement.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Route("/roster", h.Roster.Routes)
			r.Route("/plans", h.Plans.Routes)
			r.Route("/discounts", h.Discounts.Routes)
			r.Route("/invoices", h.Invoices.Routes)
			r.Route("/boletos", h.Boletos.Routes)
			r.Route("/ledger", h.Ledger.Routes)
			r.Route("/reports", h.Ledger.ReportRoutes)
			r.Route("/webhooks", h.Webhooks.Routes)
		})

		r.Route("/settlements", h.Settlement.Routes)
	})

	return router
}
