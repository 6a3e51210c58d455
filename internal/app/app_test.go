package app_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/app"
	"github.com/MrJamesThe3rd/tesouraria/internal/config"
	"github.com/MrJamesThe3rd/tesouraria/internal/database/dbtest"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
	"github.com/MrJamesThe3rd/tesouraria/internal/settlement"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Billing.BankCode = 1
	cfg.Billing.AgreementCode = 1234567
	cfg.Billing.Carteira = "17"
	cfg.Billing.Location = "America/Sao_Paulo"
	cfg.Billing.OperationalSubcategories = []string{"material"}

	return cfg
}

func TestNew_BillsAndSettlesFromReturnFile(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(testConfig(), dbtest.New(t))
	require.NoError(t, err)

	require.NoError(t, a.Roster.Sync(ctx, []roster.Entry{{StudentID: "s1", ClassID: "3A", Active: true}}))

	_, err = a.Plans.Upsert(ctx, plan.UpsertParams{
		Scope:         plan.ScopeClass,
		ScopeID:       "3A",
		EffectiveFrom: period.MustParse("2025-04"),
		Terms: plan.Terms{
			BaseAmount:           money.MustParse("500.00"),
			DueDay:               10,
			LateFeePercent:       money.MustPercent("2"),
			DailyInterestPercent: money.MustPercent("0.1"),
			EarlyDiscountPercent: money.MustPercent("0"),
		},
	})
	require.NoError(t, err)

	res, err := a.Generator.GenerateForPeriod(ctx, period.MustParse("2025-04"))
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	nosso := res.Created[0].Boleto.NossoNumero
	file := fmt.Sprintf("nosso_numero;referencia;data_pagamento;valor\n%s;RET-9;2025-04-10;500,00\n", nosso)

	report, err := a.Settlement.Import(ctx, strings.NewReader(file))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, settlement.OutcomeConfirmed, report.Rows[0].Outcome)

	again, err := a.Settlement.Import(ctx, strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Duplicate)

	dre, err := a.Ledger.DRE(ctx, period.MustParse("2025-04").Range())
	require.NoError(t, err)
	assert.Equal(t, "500.00", dre.OperationalResult.String())
}

func TestNew_BadLocation(t *testing.T) {
	cfg := testConfig()
	cfg.Billing.Location = "Mars/Olympus"

	_, err := app.New(cfg, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "json", false},
		{"debug", "text", false},
		{"WARN", "", false},
		{"loud", "json", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := app.NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
