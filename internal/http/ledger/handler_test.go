package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tesouraria/internal/export"
	ledgerhttp "github.com/MrJamesThe3rd/tesouraria/internal/http/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

func newRouter(t *testing.T) (http.Handler, *ledger.MockRepository) {
	t.Helper()

	repo := ledger.NewMockRepository(gomock.NewController(t))
	svc := ledger.NewService(repo, []string{"material"})
	h := ledgerhttp.NewHandler(svc, export.NewService(svc))

	r := chi.NewRouter()
	r.Route("/ledger", h.Routes)
	r.Route("/reports", h.ReportRoutes)

	return r, repo
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func aprilEntries() []*ledger.Entry {
	invoiceID := uuid.New()

	return []*ledger.Entry{
		{
			ID: uuid.New(), Date: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
			Category: ledger.CategoryRevenue, Subcategory: ledger.SubcategoryTuition,
			Amount: money.MustParse("500.00"), Source: ledger.SourceInvoice, InvoiceID: &invoiceID,
		},
		{
			ID: uuid.New(), Date: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC),
			Category: ledger.CategoryExpense, Subcategory: "material",
			Amount: money.MustParse("120.00"), Source: ledger.SourceManual,
		},
		{
			ID: uuid.New(), Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
			Category: ledger.CategoryRevenue, Subcategory: "doacao",
			Amount: money.MustParse("30.00"), Source: ledger.SourceManual,
		},
	}
}

func TestHandler_Record(t *testing.T) {
	r, repo := newRouter(t)

	repo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			assert.Equal(t, ledger.CategoryExpense, e.Category)
			assert.Equal(t, int64(12000), e.Amount.Cents)

			return nil
		})

	rec := do(r, http.MethodPost, "/ledger/entries",
		`{"date":"2025-04-11","category":"expense","subcategory":"material","amount":"120.00","description":"giz"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "2025-04-11", body["date"])
	assert.Equal(t, "manual", body["source"])
	assert.Equal(t, "120.00", body["amount"])
}

func TestHandler_RecordRejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"UnknownCategory", `{"date":"2025-04-11","category":"transfer","subcategory":"x","amount":"1.00"}`, http.StatusUnprocessableEntity},
		{"BadDate", `{"date":"11/04/2025","category":"expense","subcategory":"x","amount":"1.00"}`, http.StatusUnprocessableEntity},
		{"ZeroAmount", `{"date":"2025-04-11","category":"expense","subcategory":"x","amount":"0.00"}`, http.StatusUnprocessableEntity},
		{"FloatAmount", `{"date":"2025-04-11","category":"expense","subcategory":"x","amount":1.5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t)
			assert.Equal(t, tt.wantStatus, do(r, http.MethodPost, "/ledger/entries", tt.body).Code)
		})
	}
}

func TestHandler_DRE(t *testing.T) {
	r, repo := newRouter(t)
	repo.EXPECT().ListEntries(gomock.Any(), period.MustParse("2025-04").Range()).Return(aprilEntries(), nil)

	rec := do(r, http.MethodGet, "/reports/dre?period=2025-04", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "380.00", body["operational_result"])
	assert.Equal(t, "30.00", body["non_operational_result"])
	assert.Equal(t, "410.00", body["net_result"])
}

func TestHandler_Cashflow(t *testing.T) {
	r, repo := newRouter(t)

	rng, err := period.ParseRange("", "2025-04-10", "2025-04-12")
	require.NoError(t, err)

	repo.EXPECT().Snapshot(gomock.Any(), rng).Return(money.MustParse("1000.00"), aprilEntries()[:2], nil)

	rec := do(r, http.MethodGet, "/reports/cashflow?from=2025-04-10&to=2025-04-12", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Opening string `json:"opening_balance"`
		Closing string `json:"closing_balance"`
		Days    []any  `json:"days"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "1000.00", body.Opening)
	assert.Equal(t, "1380.00", body.Closing)
	assert.Len(t, body.Days, 3)
}

func TestHandler_ReportNeedsRange(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodGet, "/reports/balance?from=2025-04-10", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ReportRejectsUnboundedRange(t *testing.T) {
	r, _ := newRouter(t)

	for _, kind := range []string{"dre", "balance", "cashflow"} {
		rec := do(r, http.MethodGet, "/reports/"+kind+"?from=0001-01-01&to=9999-12-31", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, kind)
		assert.Contains(t, rec.Body.String(), "at most 1830 allowed", kind)
	}
}

func TestHandler_ExportCSV(t *testing.T) {
	r, repo := newRouter(t)
	repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(aprilEntries(), nil)

	rec := do(r, http.MethodGet, "/ledger/export?period=2025-04", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "livro-caixa_20250401_20250430.csv")
	assert.Len(t, strings.Split(strings.TrimSpace(rec.Body.String()), "\n"), 4)
}
