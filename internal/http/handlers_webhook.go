package http

import (
	"errors"
	"io"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 65536

// handleStripeWebhook verifies the delivery signature before touching any
// state. Bad signatures and events without an owner answer 400 so the
// sender does not retry forever.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentBilling)

	if s.svc.Webhooks == nil || s.svc.Billing == nil {
		logger.ErrorContext(ctx, "Billing webhook received but billing is not configured",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		logger.WarnContext(ctx, "Unreadable webhook body", log.FieldError, err)
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ev, err := s.svc.Webhooks.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, core.ErrInvalidSignature) && !core.IsValidation(err) {
			status = http.StatusInternalServerError
		}
		logger.WarnContext(ctx, "Webhook rejected", log.FieldError, err, log.FieldStatusCode, status)
		writeError(w, status, err.Error())
		return
	}

	if err := s.svc.Billing.HandleEvent(ctx, ev); err != nil {
		if core.IsValidation(err) {
			logger.WarnContext(ctx, "Webhook event not applicable", "event_id", ev.ID, "type", ev.Type, log.FieldError, err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(w, r, err, log.ComponentBilling, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
