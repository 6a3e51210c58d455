// Package app wires the services shared by the API server and the operator CLI.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/config"
	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	discountStore "github.com/MrJamesThe3rd/tesouraria/internal/discount/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/export"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/tesouraria/internal/invoice/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tesouraria/internal/ledger/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
	planStore "github.com/MrJamesThe3rd/tesouraria/internal/plan/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
	rosterStore "github.com/MrJamesThe3rd/tesouraria/internal/roster/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/settlement"
)

type App struct {
	Codec      *boleto.Codec
	Roster     *roster.Service
	Plans      *plan.Registry
	Discounts  *discount.Service
	Invoices   *invoice.Service
	Generator  *invoice.Generator
	Ledger     *ledger.Service
	Export     *export.Service
	Settlement *settlement.Service
}

func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	loc, err := cfg.BillingLocation()
	if err != nil {
		return nil, err
	}

	var (
		codec  = boleto.NewCodec(cfg.Billing.Carteira)
		issuer = invoice.Issuer{BankCode: cfg.Billing.BankCode, AgreementCode: cfg.Billing.AgreementCode}

		invoices = invoiceStore.New(db)

		rosterService   = roster.NewService(rosterStore.New(db))
		planRegistry    = plan.NewRegistry(planStore.New(db))
		discountService = discount.NewService(discountStore.New(db))
		ledgerService   = ledger.NewService(ledgerStore.New(db), cfg.Billing.OperationalSubcategories)
		invoiceService  = invoice.NewService(invoices, discountService, codec, issuer, loc)
	)

	return &App{
		Codec:      codec,
		Roster:     rosterService,
		Plans:      planRegistry,
		Discounts:  discountService,
		Invoices:   invoiceService,
		Generator:  invoice.NewGenerator(invoices, rosterService, planRegistry, codec, issuer),
		Ledger:     ledgerService,
		Export:     export.NewService(ledgerService),
		Settlement: settlement.NewService(invoiceService, loc),
	}, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json", "":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", format)
	}
}
