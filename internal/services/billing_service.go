package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// BillingService starts premium checkouts and applies verified billing
// events to subscriptions.
type BillingService struct {
	subscriptions SubscriptionStore
	checkout      CheckoutCreator
	now           Clock
}

func NewBillingService(subscriptions SubscriptionStore, now Clock) *BillingService {
	if now == nil {
		now = time.Now
	}
	return &BillingService{subscriptions: subscriptions, now: now}
}

// Subscription returns the owner's billing state.
func (s *BillingService) Subscription(ctx context.Context, owner string) (core.Subscription, error) {
	if owner == "" {
		return core.Subscription{}, core.ErrUnauthorized
	}
	sub, err := s.subscriptions.GetSubscription(ctx, owner)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("load subscription: %w", err)
	}
	return sub, nil
}

// WithCheckout enables StartCheckout. Without it checkouts fail with
// core.ErrBillingUnavailable.
func (s *BillingService) WithCheckout(c CheckoutCreator) *BillingService {
	s.checkout = c
	return s
}

// StartCheckout opens a premium checkout for owner unless the owner is
// already premium.
func (s *BillingService) StartCheckout(ctx context.Context, owner string) (core.CheckoutSession, error) {
	if owner == "" {
		return core.CheckoutSession{}, core.ErrUnauthorized
	}
	if s.checkout == nil {
		return core.CheckoutSession{}, core.ErrBillingUnavailable
	}
	sub, err := s.Subscription(ctx, owner)
	if err != nil {
		return core.CheckoutSession{}, err
	}
	if sub.IsPremium() {
		return core.CheckoutSession{}, core.ErrAlreadyPremium
	}
	sess, err := s.checkout.CreateCheckoutSession(ctx, owner)
	if err != nil {
		return core.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	slog.InfoContext(ctx, "Checkout session created", "session_id", sess.ID)
	return sess, nil
}

// HandleEvent grants premium on a paid invoice and revokes it when the
// subscription is deleted. Other event types are ignored.
func (s *BillingService) HandleEvent(ctx context.Context, ev core.BillingEvent) error {
	switch ev.Type {
	case core.BillingInvoicePaid, core.BillingSubscriptionDeleted:
	default:
		slog.DebugContext(ctx, "Ignoring billing event", "type", ev.Type, "event_id", ev.ID)
		return nil
	}
	if ev.OwnerID == "" {
		return core.NewValidationError("owner", "billing event carries no user id")
	}

	sub := core.Subscription{OwnerID: ev.OwnerID, UpdatedAt: s.now().UTC()}
	if ev.Type == core.BillingInvoicePaid {
		sub.Plan = core.PlanPremium
		sub.CustomerID = ev.CustomerID
		sub.SubscriptionID = ev.SubscriptionID
	}
	if err := s.subscriptions.SaveSubscription(ctx, sub); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	slog.InfoContext(ctx, "Subscription updated", "event_id", ev.ID, "type", ev.Type, "plan", sub.Plan)
	return nil
}
