package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BILLING_AGREEMENT_CODE", "1234567")
	t.Setenv("WEBHOOK_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "postgres://postgres:@localhost:5432/tesouraria?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, 1234567, cfg.Billing.AgreementCode)
	assert.Equal(t, "17", cfg.Billing.Carteira)
	assert.Contains(t, cfg.Billing.OperationalSubcategories, "mensalidade")

	loc, err := cfg.BillingLocation()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_SQLite(t *testing.T) {
	t.Setenv("BILLING_AGREEMENT_CODE", "1")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_NAME", "/tmp/tesouraria.db")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tesouraria.db", cfg.ConnectionString())
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("BILLING_AGREEMENT_CODE", "")

	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("BILLING_AGREEMENT_CODE", "1")
	t.Setenv("DB_DRIVER", "mysql")

	_, err = config.Load()
	assert.Error(t, err)
}
