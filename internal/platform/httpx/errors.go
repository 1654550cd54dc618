// Package httpx is the single place domain failures become HTTP responses.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for the domain layer. Handlers and services return
// these (usually wrapped); only RespondError turns them into transport
// responses.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("duplicate entry")
	ErrValidation      = errors.New("validation failed")
	// ErrIntegrity marks inconsistent principal/tenant data. Never
	// retried; surfaces as a 500 and is always logged.
	ErrIntegrity = errors.New("data integrity violation")
	// ErrUnavailable marks a downstream dependency outage.
	ErrUnavailable = errors.New("service unavailable")
)

// Machine-readable codes carried alongside the human message.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeValidation      = "validation_failed"
	CodeIntegrity       = "integrity_error"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal_error"
)

// FieldViolation describes one failed input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level violations. It matches
// ErrValidation under errors.Is so callers can branch on the sentinel.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string { return ErrValidation.Error() }

// Is reports sentinel equivalence with ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	Error   string           `json:"error"`
	Code    string           `json:"code,omitempty"`
	Details []FieldViolation `json:"details,omitempty"`
}

// RespondError maps a domain failure to an HTTP response with a stable
// code. Unrecognized errors become a generic 500; the underlying error is
// logged, never sent to the client.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, ErrorBody{Error: err.Error(), Code: CodeUnauthenticated})
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, ErrorBody{Error: err.Error(), Code: CodeForbidden})
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, ErrorBody{Error: err.Error(), Code: CodeNotFound})
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, ErrorBody{Error: err.Error(), Code: CodeConflict})
	case errors.As(err, &verr):
		Error(w, http.StatusBadRequest, ErrorBody{Error: ErrValidation.Error(), Code: CodeValidation, Details: verr.Violations})
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: CodeValidation})
	case errors.Is(err, ErrUnavailable):
		Error(w, http.StatusServiceUnavailable, ErrorBody{Error: err.Error(), Code: CodeUnavailable})
	case errors.Is(err, ErrIntegrity):
		if logger != nil {
			logger.Error("integrity failure", slog.Any("error", err))
		}
		Error(w, http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: CodeIntegrity})
	default:
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		Error(w, http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: CodeInternal})
	}
}
