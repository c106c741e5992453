package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// EventParser verifies a billing webhook delivery and extracts its event.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (core.BillingEvent, error)
}

// Services are the application services behind the routes.
type Services struct {
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	Eligibility  *services.EligibilityGate
	Categories   *services.CategoryService
	Reports      *services.ReportService
	Billing      *services.BillingService
	Webhooks     EventParser
	// Ping reports whether the store is reachable. Nil means always ready.
	Ping func(ctx context.Context) error
}

type Options struct {
	Logger             *log.Logger
	Verifier           *auth.Verifier
	Location           *time.Location
	TrustedProxies     []string
	BlockSuspicious    bool
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	svc      Services
	logger   *log.Logger
	loc      *time.Location
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:      svc,
		logger:   logger.WithComponent(log.ComponentHTTP),
		loc:      loc,
		detector: detector,
		limiter:  ratelimit.NewLimiter(limiterCfg),
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		started:  time.Now(),
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleUpsertTransaction)
	api.HandleFunc("GET /api/transactions/eligibility", s.handleEligibility)
	api.HandleFunc("GET /api/transactions/export", s.handleExport)
	api.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", s.handleUpsertTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("DELETE /api/categories/{value}", s.handleDeleteCategory)
	api.HandleFunc("GET /api/subscription", s.handleSubscription)
	api.HandleFunc("POST /api/subscription/checkout", s.handleCheckout)
	api.HandleFunc("POST /api/reports", s.handleReport)

	limited := s.limiter.Middleware(s.rateLimitKey, s.handleRateLimited)(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("POST /webhooks/stripe", s.handleStripeWebhook)
	if opts.Verifier != nil {
		mux.Handle("/api/", auth.Middleware(opts.Verifier, s.handleUnauthorized)(limited))
	} else {
		logger.Warn("No token verifier configured, API routes reject every request")
		mux.HandleFunc("/api/", s.handleUnauthorized)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = detector.Middleware(opts.BlockSuspicious)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// rateLimitKey buckets authenticated requests by owner and the rest by
// client IP.
func (s *Server) rateLimitKey(r *http.Request) string {
	if owner := auth.OwnerFromContext(r.Context()); owner != "" {
		return "owner:" + owner
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, core.ErrUnauthorized.Error())
}
