// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type Store struct {
	mu            sync.Mutex
	transactions  map[string]core.Transaction
	categories    []core.CustomCategory
	subscriptions map[string]core.Subscription
}

func New() *Store {
	return &Store{
		transactions:  make(map[string]core.Transaction),
		subscriptions: make(map[string]core.Subscription),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) matching(f core.TransactionFilter) []core.Transaction {
	var out []core.Transaction
	for _, t := range s.transactions {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Sum(_ context.Context, f core.TransactionFilter) (core.GroupValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := core.GroupValue{Sum: decimal.Zero}
	for _, t := range s.matching(f) {
		g.Count++
		g.Sum = g.Sum.Add(t.Amount)
	}
	return g, nil
}

func (s *Store) GroupCount(_ context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error) {
	return s.group(f, key), nil
}

func (s *Store) GroupSum(_ context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error) {
	return s.group(f, key), nil
}

func (s *Store) group(f core.TransactionFilter, key core.GroupKey) []core.GroupValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := map[string]*core.GroupValue{}
	for _, t := range s.matching(f) {
		k := string(t.Type)
		if key == core.GroupByCategory {
			k = t.Category
		}
		g, ok := buckets[k]
		if !ok {
			g = &core.GroupValue{Key: k, Sum: decimal.Zero}
			buckets[k] = g
		}
		g.Count++
		g.Sum = g.Sum.Add(t.Amount)
	}
	out := make([]core.GroupValue, 0, len(buckets))
	for _, g := range buckets {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *Store) FindMany(_ context.Context, f core.TransactionFilter, opts core.FindOptions) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.matching(f)
	sort.Slice(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if opts.Ascending {
			return c < 0
		}
		return c > 0
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

// compare orders by date, then creation time, then id.
func compare(a, b core.Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (s *Store) Count(_ context.Context, f core.TransactionFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matching(f))), nil
}

func (s *Store) Create(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

// CreateWithinCap checks and inserts under the same lock.
func (s *Store) CreateWithinCap(_ context.Context, t core.Transaction, capFilter core.TransactionFilter, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matching(capFilter)) >= limit {
		return core.ErrMonthlyLimitReached
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) Update(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return core.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) Get(_ context.Context, owner, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListCustomCategories(_ context.Context, owner string) ([]core.CustomCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.CustomCategory{}
	for _, c := range s.categories {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AddCustomCategory(_ context.Context, c core.CustomCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.OwnerID == c.OwnerID && strings.EqualFold(existing.Label, c.Label) {
			return core.NewValidationError("label", "category already exists")
		}
	}
	s.categories = append(s.categories, c)
	return nil
}

func (s *Store) RemoveCustomCategories(_ context.Context, owner, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.categories[:0]
	var removed int64
	for _, c := range s.categories {
		if c.OwnerID == owner && c.Value == value {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.categories = kept
	return removed, nil
}

func (s *Store) GetSubscription(_ context.Context, owner string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subscriptions[owner]; ok {
		return sub, nil
	}
	return core.Subscription{OwnerID: owner}, nil
}

func (s *Store) SaveSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.OwnerID] = sub
	return nil
}
