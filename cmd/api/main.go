package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tesouraria/internal/app"
	"github.com/MrJamesThe3rd/tesouraria/internal/config"
	"github.com/MrJamesThe3rd/tesouraria/internal/database"
	tesourariaHttp "github.com/MrJamesThe3rd/tesouraria/internal/http"
	boletoHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/boleto"
	discountHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/discount"
	invoiceHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/invoice"
	ledgerHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/ledger"
	planHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/plan"
	rosterHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/roster"
	settlementHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/settlement"
	webhookHandler "github.com/MrJamesThe3rd/tesouraria/internal/http/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	a, err := app.New(cfg, db)
	if err != nil {
		return err
	}

	router := tesourariaHttp.New(tesourariaHttp.Handlers{
		Roster:     rosterHandler.NewHandler(a.Roster),
		Plans:      planHandler.NewHandler(a.Plans),
		Discounts:  discountHandler.NewHandler(a.Discounts),
		Invoices:   invoiceHandler.NewHandler(a.Invoices, a.Generator),
		Boletos:    boletoHandler.NewHandler(a.Codec),
		Ledger:     ledgerHandler.NewHandler(a.Ledger, a.Export),
		Webhooks:   webhookHandler.NewHandler(a.Invoices, cfg.Webhook.Secret, cfg.Webhook.Issuer),
		Settlement: settlementHandler.NewHandler(a.Settlement),
	}, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", cfg.App.Port, "app", cfg.App.Name)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped")

	return nil
}
