package services

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Ports implemented by storage, messaging and upstream adapters.
type (
	TransactionStore interface {
		Sum(ctx context.Context, f core.TransactionFilter) (core.GroupValue, error)
		GroupCount(ctx context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error)
		GroupSum(ctx context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error)
		FindMany(ctx context.Context, f core.TransactionFilter, opts core.FindOptions) ([]core.Transaction, error)
		Count(ctx context.Context, f core.TransactionFilter) (int64, error)
		Create(ctx context.Context, t core.Transaction) error
		// CreateWithinCap inserts t only while fewer than limit rows match
		// capFilter, as one atomic step.
		CreateWithinCap(ctx context.Context, t core.Transaction, capFilter core.TransactionFilter, limit int) error
		Update(ctx context.Context, t core.Transaction) error
		Get(ctx context.Context, owner, id string) (core.Transaction, error)
		Delete(ctx context.Context, owner, id string) error
	}

	CategoryStore interface {
		ListCustomCategories(ctx context.Context, owner string) ([]core.CustomCategory, error)
		AddCustomCategory(ctx context.Context, c core.CustomCategory) error
		RemoveCustomCategories(ctx context.Context, owner, value string) (int64, error)
	}

	SubscriptionStore interface {
		GetSubscription(ctx context.Context, owner string) (core.Subscription, error)
		SaveSubscription(ctx context.Context, s core.Subscription) error
	}

	// Store is what a data backend provides.
	Store interface {
		TransactionStore
		CategoryStore
		SubscriptionStore
		Ping(ctx context.Context) error
		Close() error
	}

	SyncPublisher interface {
		PublishTransactionSync(ctx context.Context, id, ownerID string, action amqp.SyncAction) error
	}

	// CheckoutCreator opens a hosted premium checkout for an owner.
	CheckoutCreator interface {
		CreateCheckoutSession(ctx context.Context, owner string) (core.CheckoutSession, error)
	}

	// ReportGenerator writes a narrative report for one month of
	// transactions.
	ReportGenerator interface {
		GenerateReport(ctx context.Context, transactions []core.Transaction, customs []core.CustomCategory) (string, error)
	}
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
