package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Eligibility describes the owner's standing against the free-tier cap.
type Eligibility struct {
	CanAdd  bool  `json:"canAdd"`
	Premium bool  `json:"premium"`
	Used    int64 `json:"used"`
	Limit   int   `json:"limit"`
}

// EligibilityGate answers whether an owner may create another transaction
// this month. The answer is advisory; the atomic guard lives in the store.
type EligibilityGate struct {
	transactions  TransactionStore
	subscriptions SubscriptionStore
	limit         int
	loc           *time.Location
	now           Clock
}

func NewEligibilityGate(transactions TransactionStore, subscriptions SubscriptionStore, limit int, loc *time.Location, now Clock) *EligibilityGate {
	if limit <= 0 {
		limit = defaultFreeTierLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &EligibilityGate{transactions: transactions, subscriptions: subscriptions, limit: limit, loc: loc, now: now}
}

func (g *EligibilityGate) CanAddTransaction(ctx context.Context, owner string) (bool, error) {
	e, err := g.Status(ctx, owner)
	if err != nil {
		return false, err
	}
	return e.CanAdd, nil
}

// Status counts transactions created in the current calendar month. Premium
// owners are never capped and skip the count.
func (g *EligibilityGate) Status(ctx context.Context, owner string) (Eligibility, error) {
	if owner == "" {
		return Eligibility{}, core.ErrUnauthorized
	}
	sub, err := g.subscriptions.GetSubscription(ctx, owner)
	if err != nil {
		return Eligibility{}, fmt.Errorf("load subscription: %w", err)
	}
	if sub.IsPremium() {
		return Eligibility{CanAdd: true, Premium: true, Limit: g.limit}, nil
	}

	month := core.PeriodOf(g.now(), g.loc)
	used, err := g.transactions.Count(ctx, core.TransactionFilter{
		OwnerID:     owner,
		CreatedFrom: month.Start,
		CreatedTo:   month.End,
	})
	if err != nil {
		return Eligibility{}, fmt.Errorf("count transactions: %w", err)
	}
	return Eligibility{CanAdd: used < int64(g.limit), Used: used, Limit: g.limit}, nil
}
