package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const defaultFreeTierLimit = 10

// TransactionService validates and persists transactions. After each write
// it rotates the owner's dashboard generation and publishes a sync message.
type TransactionService struct {
	store         TransactionStore
	subscriptions SubscriptionStore
	publisher     SyncPublisher
	generations   *cache.Generations
	loc           *time.Location
	now           Clock
	newID         func() string
	enforceCap    bool
	freeLimit     int
}

type TransactionOptions struct {
	Publisher   SyncPublisher
	Generations *cache.Generations
	Location    *time.Location
	Clock       Clock
	EnforceCap  bool
	FreeLimit   int
}

func NewTransactionService(store TransactionStore, subscriptions SubscriptionStore, opts TransactionOptions) *TransactionService {
	s := &TransactionService{
		store:         store,
		subscriptions: subscriptions,
		publisher:     opts.Publisher,
		generations:   opts.Generations,
		loc:           opts.Location,
		now:           opts.Clock,
		newID:         uuid.NewString,
		enforceCap:    opts.EnforceCap,
		freeLimit:     opts.FreeLimit,
	}
	if s.generations == nil {
		s.generations = cache.NewGenerations(nil)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.freeLimit <= 0 {
		s.freeLimit = defaultFreeTierLimit
	}
	return s
}

// Upsert creates a transaction when in.ID is empty and otherwise replaces
// the owner's transaction with that id.
func (s *TransactionService) Upsert(ctx context.Context, owner string, in core.TransactionInput) (core.Transaction, error) {
	if owner == "" {
		return core.Transaction{}, core.ErrUnauthorized
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	in.Date = in.Date.UTC().Truncate(time.Millisecond)
	now := s.now().UTC().Truncate(time.Millisecond)

	if in.ID != "" {
		return s.update(ctx, owner, in, now)
	}
	return s.create(ctx, owner, in, now)
}

func (s *TransactionService) create(ctx context.Context, owner string, in core.TransactionInput, now time.Time) (core.Transaction, error) {
	t := in.Apply(core.Transaction{
		ID:        s.newID(),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	})

	capped, err := s.capApplies(ctx, owner)
	if err != nil {
		return core.Transaction{}, err
	}
	if capped {
		month := core.PeriodOf(now, s.loc)
		capFilter := core.TransactionFilter{OwnerID: owner, CreatedFrom: month.Start, CreatedTo: month.End}
		err = s.store.CreateWithinCap(ctx, t, capFilter, s.freeLimit)
	} else {
		err = s.store.Create(ctx, t)
	}
	if err != nil {
		if errors.Is(err, core.ErrMonthlyLimitReached) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created", "id", t.ID, "type", t.Type, "category", t.Category)
	s.afterWrite(ctx, t, amqp.ActionUpsert)
	return t, nil
}

func (s *TransactionService) update(ctx context.Context, owner string, in core.TransactionInput, now time.Time) (core.Transaction, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return core.Transaction{}, core.NewValidationError("id", "must be a UUID")
	}
	prev, err := s.store.Get(ctx, owner, in.ID)
	if err != nil {
		return core.Transaction{}, s.storeErr("load transaction", err)
	}

	t := in.Apply(prev)
	t.UpdatedAt = now
	if err := s.store.Update(ctx, t); err != nil {
		return core.Transaction{}, s.storeErr("update transaction", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", t.ID, "type", t.Type, "category", t.Category)
	s.afterWrite(ctx, t, amqp.ActionUpsert)
	return t, nil
}

// Delete removes the owner's transaction with id.
func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return core.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return core.NewValidationError("id", "must be a UUID")
	}
	prev, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return s.storeErr("load transaction", err)
	}
	if err := s.store.Delete(ctx, owner, id); err != nil {
		return s.storeErr("delete transaction", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.afterWrite(ctx, prev, amqp.ActionDelete)
	return nil
}

// Get returns one of the owner's transactions.
func (s *TransactionService) Get(ctx context.Context, owner, id string) (core.Transaction, error) {
	if owner == "" {
		return core.Transaction{}, core.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, core.NewValidationError("id", "must be a UUID")
	}
	t, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return core.Transaction{}, s.storeErr("load transaction", err)
	}
	return t, nil
}

// List returns the owner's transactions newest first, restricted to
// year/month when month is non-zero. A zero year means the current year.
func (s *TransactionService) List(ctx context.Context, owner string, year, month int) ([]core.Transaction, error) {
	if owner == "" {
		return nil, core.ErrUnauthorized
	}
	f := core.TransactionFilter{OwnerID: owner}
	if month != 0 {
		if year == 0 {
			year = s.now().In(s.loc).Year()
		}
		p, err := core.MonthPeriod(year, time.Month(month), s.loc)
		if err != nil {
			return nil, err
		}
		f = core.ForPeriod(owner, p)
	}
	out, err := s.store.FindMany(ctx, f, core.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// capApplies reports whether the free-tier cap guards this owner's inserts.
func (s *TransactionService) capApplies(ctx context.Context, owner string) (bool, error) {
	if !s.enforceCap {
		return false, nil
	}
	sub, err := s.subscriptions.GetSubscription(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	return !sub.IsPremium(), nil
}

func (s *TransactionService) afterWrite(ctx context.Context, t core.Transaction, action amqp.SyncAction) {
	if _, err := s.generations.Rotate(ctx, t.OwnerID); err != nil {
		slog.WarnContext(ctx, "Dashboard cache invalidation failed", "owner_id", t.OwnerID, "error", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "Sync publisher not configured, skipping sync message", "id", t.ID)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, t.ID, t.OwnerID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", t.ID, "action", action, "error", err)
	}
}

func (s *TransactionService) storeErr(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
