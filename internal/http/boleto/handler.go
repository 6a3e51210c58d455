package boleto

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

type Handler struct {
	codec *boleto.Codec
}

func NewHandler(codec *boleto.Codec) *Handler {
	return &Handler{codec: codec}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/decode", h.decode)
}

type decodeRequest struct {
	DigitLine string `json:"digit_line" validate:"required"`
}

type decodeResponse struct {
	Valid       bool         `json:"valid"`
	Barcode     string       `json:"barcode,omitempty"`
	DueDate     string       `json:"due_date,omitempty"`
	Amount      *money.Money `json:"amount,omitempty"`
	BankCode    int          `json:"bank_code,omitempty"`
	NossoNumero string       `json:"nosso_numero,omitempty"`
	Code        string       `json:"code,omitempty"`
	Message     string       `json:"message,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	d, err := h.codec.Decode(req.DigitLine)
	if err != nil {
		if errors.Is(err, boleto.ErrChecksumMismatch) {
			render.JSON(w, http.StatusUnprocessableEntity, decodeResponse{
				Valid:   false,
				Code:    "checksum_mismatch",
				Message: err.Error(),
			})

			return
		}

		render.Error(w, err)

		return
	}

	render.JSON(w, http.StatusOK, decodeResponse{
		Valid:       true,
		Barcode:     d.Barcode,
		DueDate:     d.DueDate.Format(time.DateOnly),
		Amount:      &d.Amount,
		BankCode:    d.BankCode,
		NossoNumero: d.NossoNumero,
	})
}
