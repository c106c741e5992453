package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/auth"
	"fintrack/internal/billing"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

const (
	testJWTSecret     = "test-secret-that-is-long-enough-32"
	testWebhookSecret = "whsec_test"
)

type fakeGenerator struct{ text string }

func (f fakeGenerator) GenerateReport(context.Context, []core.Transaction, []core.CustomCategory) (string, error) {
	return f.text, nil
}

type testEnv struct {
	srv      *Server
	store    *memory.Store
	verifier *auth.Verifier
}

func newTestEnv(t *testing.T, mutate func(*memory.Store, *Services, *Options)) *testEnv {
	t.Helper()
	store := memory.New()
	summaries := cache.NewLRUCache[core.DashboardSummary](100, time.Hour)
	gens := cache.NewGenerations(cache.NewLRUCache[string](100, time.Hour))
	svc := Services{
		Transactions: services.NewTransactionService(store, store, services.TransactionOptions{Generations: gens, EnforceCap: true, FreeLimit: 10}),
		Dashboard:    services.NewDashboardService(store, store, services.DashboardOptions{Cache: summaries, Generations: gens}),
		Eligibility:  services.NewEligibilityGate(store, store, 10, time.UTC, nil),
		Categories:   services.NewCategoryService(store, gens, nil),
		Reports:      services.NewReportService(store, store, store, fakeGenerator{text: "Spend less."}, time.UTC, nil),
		Billing:      services.NewBillingService(store, nil),
		Webhooks:     billing.NewStripeVerifier(testWebhookSecret),
		Ping:         store.Ping,
	}
	verifier := auth.NewVerifier(testJWTSecret, "")
	opts := Options{Verifier: verifier, Location: time.UTC}
	if mutate != nil {
		mutate(store, &svc, &opts)
	}
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, verifier: verifier}
}

func (e *testEnv) do(t *testing.T, method, path, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if owner != "" {
		token, err := e.verifier.GenerateToken(owner, time.Minute)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func txBody(name, amount, typ, category, date string) string {
	return fmt.Sprintf(`{"name":%q,"amount":%s,"type":%q,"category":%q,"paymentMethod":"PIX","date":%q}`,
		name, amount, typ, category, date)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	down := newTestEnv(t, func(_ *memory.Store, s *Services, _ *Options) {
		s.Ping = func(context.Context) error { return errors.New("db down") }
	})
	if rr := down.do(t, http.MethodGet, "/readyz", "", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the store is down, got %d", rr.Code)
	}
}

func TestResponsesCarryRequestIDAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/healthz", "", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/api/dashboard", "/api/transactions", "/api/categories", "/api/unknown"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rr.Code)
		}
		if body := decode[errorResponse](t, rr); body.Error == "" {
			t.Errorf("%s: expected error body", path)
		}
	}

	rr := env.do(t, http.MethodGet, "/api/unknown", "user_1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("authenticated unknown route: expected 404, got %d", rr.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Lunch", "12.5", "EXPENSE", "FOOD", "2024-03-05"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[core.Transaction](t, rr)
	if created.ID == "" || created.OwnerID != "user_1" || created.Amount.StringFixed(2) != "12.50" {
		t.Fatalf("unexpected transaction %+v", created)
	}

	path := "/api/transactions/" + created.ID
	if rr := env.do(t, http.MethodGet, path, "user_1", ""); rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, path, "user_2", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("other owner get: expected 404, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPut, path, "user_1", txBody("Dinner", "20", "EXPENSE", "FOOD", "2024-03-06"))
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if updated := decode[core.Transaction](t, rr); updated.ID != created.ID || updated.Name != "Dinner" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if rr := env.do(t, http.MethodPut, path, "user_2", txBody("Stolen", "1", "EXPENSE", "FOOD", "2024-03-06")); rr.Code != http.StatusNotFound {
		t.Fatalf("other owner update: expected 404, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/transactions?year=2024&month=3", "user_1", "")
	if list := decode[[]core.Transaction](t, rr); len(list) != 1 {
		t.Fatalf("expected 1 transaction in March, got %d", len(list))
	}
	rr = env.do(t, http.MethodGet, "/api/transactions?year=2024&month=4", "user_1", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("empty month must encode as [], got %s", body)
	}

	if rr := env.do(t, http.MethodDelete, path, "user_1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, path, "user_1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestUpsertValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{"name":`},
		{"empty body", http.MethodPost, "/api/transactions", ""},
		{"empty name", http.MethodPost, "/api/transactions", txBody(" ", "1", "EXPENSE", "FOOD", "2024-03-05")},
		{"zero amount", http.MethodPost, "/api/transactions", txBody("x", "0", "EXPENSE", "FOOD", "2024-03-05")},
		{"unknown type", http.MethodPost, "/api/transactions", txBody("x", "1", "GIFT", "FOOD", "2024-03-05")},
		{"unknown category", http.MethodPost, "/api/transactions", txBody("x", "1", "EXPENSE", "PETS", "2024-03-05")},
		{"bad date", http.MethodPost, "/api/transactions", txBody("x", "1", "EXPENSE", "FOOD", "05/03/2024")},
		{"bad id", http.MethodPut, "/api/transactions/not-a-uuid", txBody("x", "1", "EXPENSE", "FOOD", "2024-03-05")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, "user_1", tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMonthlyLimitReached(t *testing.T) {
	env := newTestEnv(t, func(store *memory.Store, s *Services, _ *Options) {
		s.Transactions = services.NewTransactionService(store, store, services.TransactionOptions{EnforceCap: true, FreeLimit: 2})
		s.Eligibility = services.NewEligibilityGate(store, store, 2, time.UTC, nil)
	})
	body := txBody("Coffee", "3", "EXPENSE", "FOOD", "2024-03-05")

	for i := 0; i < 2; i++ {
		if rr := env.do(t, http.MethodPost, "/api/transactions", "user_1", body); rr.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d", i, rr.Code)
		}
	}
	rr := env.do(t, http.MethodGet, "/api/transactions/eligibility", "user_1", "")
	if e := decode[services.Eligibility](t, rr); e.CanAdd || e.Used != 2 || e.Limit != 2 {
		t.Fatalf("unexpected eligibility %+v", e)
	}
	if rr := env.do(t, http.MethodPost, "/api/transactions", "user_1", body); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 over the cap, got %d", rr.Code)
	}

	env.store.SaveSubscription(context.Background(), core.Subscription{OwnerID: "user_1", Plan: core.PlanPremium})
	if rr := env.do(t, http.MethodPost, "/api/transactions", "user_1", body); rr.Code != http.StatusCreated {
		t.Fatalf("premium owners are not capped, got %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Salary", "1000", "DEPOSIT", "SALARY", "2024-03-01"))
	env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Rent", "400", "EXPENSE", "HOUSING", "2024-03-02"))
	env.do(t, http.MethodPost, "/api/transactions", "user_2", txBody("Other", "99", "EXPENSE", "FOOD", "2024-03-02"))

	rr := env.do(t, http.MethodGet, "/api/dashboard?year=2024&month=3", "user_1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	summary := decode[core.DashboardSummary](t, rr)
	if summary.Balance.StringFixed(2) != "600.00" || summary.ExpensesTotal.StringFixed(2) != "400.00" {
		t.Errorf("unexpected totals: balance %s expenses %s", summary.Balance, summary.ExpensesTotal)
	}
	if len(summary.LastTransactions) != 2 {
		t.Errorf("expected 2 recent transactions, got %d", len(summary.LastTransactions))
	}

	// Writes through the API and category changes are visible on the next
	// read even though summaries are cached.
	env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Vet", "100", "EXPENSE", "CUSTOM_PETS", "2024-03-05"))
	summary = decode[core.DashboardSummary](t, env.do(t, http.MethodGet, "/api/dashboard?year=2024&month=3", "user_1", ""))
	if summary.Balance.StringFixed(2) != "500.00" {
		t.Errorf("stale balance after write: %s", summary.Balance)
	}
	env.do(t, http.MethodPost, "/api/categories", "user_1", `{"label":"Pets"}`)
	summary = decode[core.DashboardSummary](t, env.do(t, http.MethodGet, "/api/dashboard?year=2024&month=3", "user_1", ""))
	var petsLabel string
	for _, c := range summary.TotalExpensePerCategory {
		if c.Category == "CUSTOM_PETS" {
			petsLabel = c.Label
		}
	}
	if petsLabel != "⭐ Pets" {
		t.Errorf("stale category label after creating it: %q", petsLabel)
	}

	for _, q := range []string{"month=13", "month=abc", "year=x&month=3"} {
		if rr := env.do(t, http.MethodGet, "/api/dashboard?"+q, "user_1", ""); rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", q, rr.Code)
		}
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/categories", "user_1", `{"label":"Pets"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if c := decode[core.CustomCategory](t, rr); c.Value != "CUSTOM_PETS" {
		t.Fatalf("unexpected category %+v", c)
	}
	if rr := env.do(t, http.MethodPost, "/api/categories", "user_1", `{"label":"pets"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate: expected 422, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/categories", "user_1", "")
	opts := decode[[]core.CategoryOption](t, rr)
	if len(opts) == 0 || !opts[len(opts)-1].Custom || opts[len(opts)-1].Value != "CUSTOM_PETS" {
		t.Fatalf("custom category must follow the standard ones, got %+v", opts)
	}

	if rr := env.do(t, http.MethodDelete, "/api/categories/CUSTOM_PETS", "user_1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/api/categories/CUSTOM_PETS", "user_1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestSubscription(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/api/subscription", "user_1", "")
	if sub := decode[subscriptionResponse](t, rr); sub.Plan != "free" || sub.Premium {
		t.Fatalf("expected free plan, got %+v", sub)
	}
}

type stubCheckout struct{ err error }

func (c stubCheckout) CreateCheckoutSession(_ context.Context, owner string) (core.CheckoutSession, error) {
	if c.err != nil {
		return core.CheckoutSession{}, c.err
	}
	return core.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/" + owner}, nil
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name     string
		checkout services.CheckoutCreator
		premium  bool
		want     int
	}{
		{name: "free owner", checkout: stubCheckout{}, want: http.StatusCreated},
		{name: "already premium", checkout: stubCheckout{}, premium: true, want: http.StatusConflict},
		{name: "not configured", want: http.StatusServiceUnavailable},
		{name: "provider down", checkout: stubCheckout{err: &core.UpstreamError{Service: "stripe", Err: errors.New("secret detail")}}, want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(store *memory.Store, svc *Services, _ *Options) {
				if tt.checkout != nil {
					svc.Billing.WithCheckout(tt.checkout)
				}
				if tt.premium {
					_ = store.SaveSubscription(context.Background(), core.Subscription{OwnerID: "user_1", Plan: core.PlanPremium})
				}
			})
			rr := env.do(t, http.MethodPost, "/api/subscription/checkout", "user_1", "")
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			switch rr.Code {
			case http.StatusCreated:
				sess := decode[core.CheckoutSession](t, rr)
				if sess.ID != "cs_test_1" || sess.URL != "https://checkout.stripe.test/user_1" {
					t.Errorf("unexpected session %+v", sess)
				}
			case http.StatusBadGateway:
				if strings.Contains(rr.Body.String(), "secret detail") {
					t.Errorf("upstream detail leaked: %s", rr.Body.String())
				}
			}
		})
	}

	env := newTestEnv(t, nil)
	if rr := env.do(t, http.MethodPost, "/api/subscription/checkout", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rr.Code)
	}
}

func TestReports(t *testing.T) {
	env := newTestEnv(t, nil)
	body := `{"year":2024,"month":3}`

	if rr := env.do(t, http.MethodPost, "/api/reports", "user_1", body); rr.Code != http.StatusForbidden {
		t.Fatalf("free owner: expected 403, got %d", rr.Code)
	}

	env.store.SaveSubscription(context.Background(), core.Subscription{OwnerID: "user_1", Plan: core.PlanPremium})
	rr := env.do(t, http.MethodPost, "/api/reports", "user_1", body)
	if report := decode[core.Report](t, rr); report.Generated || report.Content != services.NoTransactionsMessage {
		t.Fatalf("empty month must not call the generator, got %+v", report)
	}

	env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Rent", "400", "EXPENSE", "HOUSING", "2024-03-02"))
	rr = env.do(t, http.MethodPost, "/api/reports", "user_1", body)
	if report := decode[core.Report](t, rr); !report.Generated || report.Content != "Spend less." {
		t.Fatalf("unexpected report %+v", report)
	}

	if rr := env.do(t, http.MethodPost, "/api/reports", "user_1", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing month: expected 422, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/api/reports?year=2024&month=3", "user_1", ""); rr.Code != http.StatusOK {
		t.Fatalf("month from query: expected 200, got %d", rr.Code)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/transactions", "user_1", txBody("Rent", "400", "EXPENSE", "HOUSING", "2024-03-02"))

	rr := env.do(t, http.MethodGet, "/api/transactions/export?year=2024&month=3", "user_1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "transactions_2024-03.xlsx") {
		t.Errorf("Content-Disposition = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "Rent" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func signedWebhook(t *testing.T, env *testEnv, payload, secret string) *httptest.ResponseRecorder {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	rr := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestStripeWebhook(t *testing.T) {
	paid := `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{
		"object":"invoice","customer":"cus_1","subscription":"sub_1",
		"lines":{"data":[{"metadata":{"user_id":"user_1"}}]}}}}`
	deleted := `{"id":"evt_2","object":"event","type":"customer.subscription.deleted","data":{"object":{
		"id":"sub_1","object":"subscription","customer":"cus_1","metadata":{"user_id":"user_1"}}}}`
	noOwner := `{"id":"evt_3","object":"event","type":"invoice.paid","data":{"object":{"customer":"cus_1","lines":{"data":[]}}}}`
	other := `{"id":"evt_4","object":"event","type":"charge.succeeded","data":{"object":{}}}`

	env := newTestEnv(t, nil)
	ctx := context.Background()

	if rr := signedWebhook(t, env, paid, "whsec_wrong"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: expected 400, got %d", rr.Code)
	}
	if sub, _ := env.store.GetSubscription(ctx, "user_1"); sub.IsPremium() {
		t.Fatal("a rejected delivery must not change state")
	}

	if rr := signedWebhook(t, env, paid, testWebhookSecret); rr.Code != http.StatusOK {
		t.Fatalf("invoice.paid: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	sub, _ := env.store.GetSubscription(ctx, "user_1")
	if !sub.IsPremium() || sub.CustomerID != "cus_1" || sub.SubscriptionID != "sub_1" {
		t.Fatalf("expected premium subscription, got %+v", sub)
	}

	if rr := signedWebhook(t, env, noOwner, testWebhookSecret); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing owner: expected 400, got %d", rr.Code)
	}
	if rr := signedWebhook(t, env, other, testWebhookSecret); rr.Code != http.StatusOK {
		t.Fatalf("ignored type: expected 200, got %d", rr.Code)
	}

	if rr := signedWebhook(t, env, deleted, testWebhookSecret); rr.Code != http.StatusOK {
		t.Fatalf("subscription deleted: expected 200, got %d", rr.Code)
	}
	if sub, _ := env.store.GetSubscription(ctx, "user_1"); sub.IsPremium() || sub.SubscriptionID != "" {
		t.Fatalf("expected premium revoked, got %+v", sub)
	}
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	env := newTestEnv(t, func(_ *memory.Store, _ *Services, o *Options) {
		o.RateLimitPerMinute = 2
	})
	for i := 0; i < 2; i++ {
		env.do(t, http.MethodPost, "/api/categories", "user_1", `{"label":"x"}`)
	}
	rr := env.do(t, http.MethodPost, "/api/categories", "user_1", `{"label":"x"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/categories", "user_1", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/api/categories", "user_2", `{"label":"Pets"}`); rr.Code != http.StatusCreated {
		t.Fatalf("another owner has its own bucket, got %d", rr.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.NewValidationError("name", "empty"), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", core.ErrUnauthorized), http.StatusUnauthorized},
		{core.ErrPremiumRequired, http.StatusForbidden},
		{core.ErrMonthlyLimitReached, http.StatusForbidden},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrAlreadyPremium, http.StatusConflict},
		{core.ErrBillingUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("checkout: %w", &core.UpstreamError{Service: "stripe", Err: errors.New("timeout")}), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
