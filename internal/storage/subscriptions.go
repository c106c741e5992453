package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// GetSubscription returns the owner's subscription. A missing row yields the
// zero value with OwnerID set, which is the free tier.
func (r *SQLiteRepository) GetSubscription(ctx context.Context, owner string) (core.Subscription, error) {
	s := core.Subscription{OwnerID: owner}
	var updated int64
	err := r.db.QueryRowContext(ctx,
		"SELECT plan, customer_id, subscription_id, updated_at_ms FROM subscriptions WHERE user_id = ?", owner).
		Scan(&s.Plan, &s.CustomerID, &s.SubscriptionID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	s.UpdatedAt = fromMillis(updated)
	return s, nil
}

func (r *SQLiteRepository) SaveSubscription(ctx context.Context, s core.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, plan, customer_id, subscription_id, updated_at_ms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   plan = excluded.plan,
		   customer_id = excluded.customer_id,
		   subscription_id = excluded.subscription_id,
		   updated_at_ms = excluded.updated_at_ms`,
		s.OwnerID, s.Plan, s.CustomerID, s.SubscriptionID, toMillis(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
