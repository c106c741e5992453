package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrPremiumRequired), errors.Is(err, core.ErrMonthlyLimitReached):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAlreadyPremium):
		return http.StatusConflict
	case errors.Is(err, core.ErrBillingUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, new(*core.UpstreamError)):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the status of err. Server errors are
// logged and their detail withheld from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, component, operation string) {
	status := errorStatus(err)
	logger := log.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldComponent, component,
			log.FieldOperation, operation)
		writeError(w, status, "internal server error")
		return
	}
	if status == http.StatusBadGateway {
		logger.ErrorContext(r.Context(), "Upstream call failed",
			log.FieldError, err,
			log.FieldComponent, component,
			log.FieldOperation, operation)
		writeError(w, status, "upstream service unavailable")
		return
	}
	logger.DebugContext(r.Context(), "Request rejected",
		log.FieldError, err,
		log.FieldStatusCode, status,
		log.FieldOperation, operation)
	writeError(w, status, err.Error())
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return core.NewValidationError("body", "must not be empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.NewValidationError("body", "too large")
		}
		return core.NewValidationError("body", "malformed JSON")
	}
	return nil
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
