package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/billing"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	ctx := context.Background()
	loc := cfg.Location()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	store := result.Store

	dashCache, err := backend.NewDashboardCache(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize dashboard cache", log.FieldError, err, "cache_backend", cfg.CacheBackend)
		os.Exit(1)
	}

	// Sync publishing is best effort: without a broker the API still serves.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sheet sync disabled", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var generator services.ReportGenerator
	var gemini *report.GeminiGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err = report.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Report generator unavailable", log.FieldError, err)
		} else {
			generator = gemini
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, reports answer with a fallback message")
	}

	var webhooks apphttp.EventParser
	if cfg.StripeWebhookSecret != "" {
		webhooks = billing.NewStripeVerifier(cfg.StripeWebhookSecret)
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, billing webhooks are refused")
	}

	billingSvc := services.NewBillingService(store, nil)
	if cfg.StripeSecretKey != "" {
		checkout, err := billing.NewCheckout(billing.CheckoutConfig{
			SecretKey:  cfg.StripeSecretKey,
			PriceID:    cfg.StripePremiumPriceID,
			SuccessURL: cfg.CheckoutSuccessURL,
			CancelURL:  cfg.CheckoutCancelURL,
		})
		if err != nil {
			logger.Warn("Checkout unavailable", log.FieldError, err)
		} else {
			billingSvc.WithCheckout(checkout)
		}
	} else {
		logger.Info("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	svc := apphttp.Services{
		Transactions: services.NewTransactionService(store, store, services.TransactionOptions{
			Publisher:   publisher,
			Generations: dashCache.Generations,
			Location:    loc,
			EnforceCap:  cfg.EnforceTransactionCap,
			FreeLimit:   cfg.FreeTierMonthlyLimit,
		}),
		Dashboard: services.NewDashboardService(store, store, services.DashboardOptions{
			Cache:       dashCache.Cache,
			Generations: dashCache.Generations,
			Location:    loc,
			RecentLimit: cfg.RecentTransactionsLimit,
		}),
		Eligibility: services.NewEligibilityGate(store, store, cfg.FreeTierMonthlyLimit, loc, nil),
		Categories:  services.NewCategoryService(store, dashCache.Generations, nil),
		Reports:     services.NewReportService(store, store, store, generator, loc, nil),
		Billing:     billingSvc,
		Webhooks:    webhooks,
		Ping:        store.Ping,
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		Verifier:           auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Location:           loc,
		TrustedProxies:     cfg.TrustedProxies,
		BlockSuspicious:    cfg.BlockSuspicious,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if gemini != nil {
			_ = gemini.Close()
		}
		if err := dashCache.Cleanup(); err != nil {
			logger.Warn("Cache cleanup error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache", cfg.CacheBackend,
		"timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
