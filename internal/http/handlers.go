package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}
	if s.svc.Ping != nil {
		if err := s.svc.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes request and security counters in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_microseconds_avg Average request duration\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_microseconds_avg gauge\n")
	fmt.Fprintf(w, "http_request_duration_microseconds_avg %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", limitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", limitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP blocked_requests_total Suspicious requests blocked\n")
	fmt.Fprintf(w, "# TYPE blocked_requests_total counter\n")
	fmt.Fprintf(w, "blocked_requests_total %d\n\n", securityMetrics.BlockedRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, log.ComponentDashboard, log.OpRead)
		return
	}
	if params.Month == 0 {
		params.Month = params.OrCurrent(s.loc).Month
	}

	summary, err := s.svc.Dashboard.Summary(r.Context(), auth.OwnerFromContext(r.Context()), params.Year, params.Month)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentDashboard, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type subscriptionResponse struct {
	Plan           string     `json:"plan"`
	Premium        bool       `json:"premium"`
	CustomerID     string     `json:"customerId,omitempty"`
	SubscriptionID string     `json:"subscriptionId,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Billing.Subscription(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentBilling, log.OpRead)
		return
	}
	resp := subscriptionResponse{
		Plan:           sub.Plan,
		Premium:        sub.IsPremium(),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.SubscriptionID,
	}
	if resp.Plan == "" {
		resp.Plan = "free"
	}
	if !sub.UpdatedAt.IsZero() {
		resp.UpdatedAt = &sub.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Billing.StartCheckout(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentBilling, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleReport generates the narrative report for the month in the body,
// falling back to the query string.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, log.ComponentReport, log.OpRead)
		return
	}
	if r.ContentLength != 0 {
		var body MonthParams
		if err := decodeJSON(w, r, &body); err != nil {
			writeServiceError(w, r, err, log.ComponentReport, log.OpRead)
			return
		}
		if body.Year != 0 {
			params.Year = body.Year
		}
		if body.Month != 0 {
			params.Month = body.Month
		}
	}
	if params.Month == 0 {
		writeServiceError(w, r, core.NewValidationError("month", "is required"), log.ComponentReport, log.OpRead)
		return
	}

	report, err := s.svc.Reports.Generate(r.Context(), auth.OwnerFromContext(r.Context()), params.Year, params.Month)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentReport, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
