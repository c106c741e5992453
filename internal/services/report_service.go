package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

const (
	NoTransactionsMessage    = "No transactions were found for this month, so there is nothing to analyse yet."
	ReportUnavailableMessage = "The financial report could not be generated right now. Please try again later."
)

// ReportService produces AI-written monthly reports for premium owners.
// Generator failures become a fallback message, never an error.
type ReportService struct {
	transactions  TransactionStore
	categories    CategoryStore
	subscriptions SubscriptionStore
	generator     ReportGenerator
	loc           *time.Location
	now           Clock
}

func NewReportService(transactions TransactionStore, categories CategoryStore, subscriptions SubscriptionStore,
	generator ReportGenerator, loc *time.Location, now Clock) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		transactions:  transactions,
		categories:    categories,
		subscriptions: subscriptions,
		generator:     generator,
		loc:           loc,
		now:           now,
	}
}

func (s *ReportService) Generate(ctx context.Context, owner string, year, month int) (core.Report, error) {
	if owner == "" {
		return core.Report{}, core.ErrUnauthorized
	}
	sub, err := s.subscriptions.GetSubscription(ctx, owner)
	if err != nil {
		return core.Report{}, fmt.Errorf("load subscription: %w", err)
	}
	if !sub.IsPremium() {
		return core.Report{}, core.ErrPremiumRequired
	}
	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	period, err := core.MonthPeriod(year, time.Month(month), s.loc)
	if err != nil {
		return core.Report{}, err
	}

	txs, err := s.transactions.FindMany(ctx, core.ForPeriod(owner, period), core.FindOptions{Ascending: true})
	if err != nil {
		return core.Report{}, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) == 0 {
		return core.Report{Content: NoTransactionsMessage}, nil
	}
	if s.generator == nil {
		slog.WarnContext(ctx, "Report generator not configured")
		return core.Report{Content: ReportUnavailableMessage}, nil
	}

	customs, err := s.categories.ListCustomCategories(ctx, owner)
	if err != nil {
		slog.WarnContext(ctx, "Custom categories unavailable for report", "error", err)
		customs = nil
	}

	content, err := s.generator.GenerateReport(ctx, txs, customs)
	if err != nil {
		slog.ErrorContext(ctx, "Report generation failed", "period", period.Key(), "error", err)
		return core.Report{Content: ReportUnavailableMessage}, nil
	}
	slog.InfoContext(ctx, "Report generated", "period", period.Key(), "transactions", len(txs))
	return core.Report{Content: content, Generated: true}, nil
}
