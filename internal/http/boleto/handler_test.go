package boleto_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	boletohttp "github.com/MrJamesThe3rd/tesouraria/internal/http/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

func TestHandler_Decode(t *testing.T) {
	codec := boleto.NewCodec("17")
	codec.Reference = func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) }

	b, err := codec.Encode(1234567, 1, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), money.MustParse("500.00"), 42)
	require.NoError(t, err)

	// The first digit of field 2 is covered by its own mod-10 check digit.
	flipped := []byte(b.DigitLine)
	if flipped[12] == '9' {
		flipped[12] = '0'
	} else {
		flipped[12]++
	}

	r := chi.NewRouter()
	r.Route("/boletos", boletohttp.NewHandler(codec).Routes)

	tests := []struct {
		name       string
		digitLine  string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "Valid",
			digitLine:  b.DigitLine,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["valid"])
				assert.Equal(t, b.Barcode, body["barcode"])
				assert.Equal(t, "2025-03-10", body["due_date"])
				assert.Equal(t, "500.00", body["amount"])
				assert.Equal(t, float64(1), body["bank_code"])
				assert.Equal(t, "12345670000000042", body["nosso_numero"])
			},
		},
		{
			name:       "ChecksumMismatch",
			digitLine:  string(flipped),
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, false, body["valid"])
				assert.Equal(t, "checksum_mismatch", body["code"])
			},
		},
		{
			name:       "TooShort",
			digitLine:  "0019",
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "validation_failed", body["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(map[string]string{"digit_line": tt.digitLine})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/boletos/decode", strings.NewReader(string(payload)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			tt.check(t, body)
		})
	}
}
