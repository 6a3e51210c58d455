// Package render holds the request binding and response writing shared by
// every API handler.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
	"github.com/MrJamesThe3rd/tesouraria/internal/settlement"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// BadRequestError is a request the server could not read at all.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }

// BadRequest wraps err so Error answers 400.
func BadRequest(format string, args ...any) error {
	return &BadRequestError{Err: fmt.Errorf(format, args...)}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return &BadRequestError{Err: fmt.Errorf("invalid request body: %w", err)}
	}

	return validate.Struct(dst)
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{invoice.ErrPaymentReferenceConflict, http.StatusConflict, "payment_reference_conflict"},
	{invoice.ErrInvoiceCancelled, http.StatusConflict, "invoice_cancelled"},
	{invoice.ErrCannotCancelPaidInvoice, http.StatusConflict, "invoice_paid"},
	{invoice.ErrIssuerChanged, http.StatusConflict, "issuer_changed"},
	{plan.ErrPlanLocked, http.StatusConflict, "plan_locked"},
	{invoice.ErrNotFound, http.StatusNotFound, "not_found"},
	{plan.ErrNoPlanForScope, http.StatusNotFound, "no_plan_for_scope"},
	{plan.ErrInvalidScope, http.StatusUnprocessableEntity, "invalid_scope"},
	{roster.ErrInvalidEntry, http.StatusUnprocessableEntity, "invalid_roster_entry"},
	{discount.ErrInvalidGrant, http.StatusUnprocessableEntity, "invalid_grant"},
	{ledger.ErrInvalidEntry, http.StatusUnprocessableEntity, "invalid_entry"},
	{settlement.ErrUnknownLayout, http.StatusUnprocessableEntity, "unknown_layout"},
}

// Error writes err as a JSON error body. Errors the API does not know about
// are logged and answered with 500.
func Error(w http.ResponseWriter, err error) {
	var (
		badRequest *BadRequestError
		invalid    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &badRequest):
		JSON(w, http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	case errors.As(err, &invalid):
		fields := make(map[string]string, len(invalid))
		for _, fe := range invalid {
			fields[fe.Field()] = fe.Translate(translator)
		}

		JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "validation_failed",
			Message: "request failed validation",
			Fields:  fields,
		})

		return
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			JSON(w, m.status, ErrorResponse{Code: m.code, Message: err.Error()})
			return
		}
	}

	if invoice.IsValidation(err) {
		JSON(w, http.StatusUnprocessableEntity, ErrorResponse{Code: "validation_failed", Message: err.Error()})
		return
	}

	slog.Error("request failed", "error", err)
	JSON(w, http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal error"})
}
