package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

var errBoom = errors.New("boom")

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type published struct {
	id, owner string
	action    amqp.SyncAction
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) PublishTransactionSync(_ context.Context, id, owner string, action amqp.SyncAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{id, owner, action})
	return p.err
}

type fakeGenerator struct {
	calls   int
	content string
	err     error
	got     []core.Transaction
}

func (g *fakeGenerator) GenerateReport(_ context.Context, txs []core.Transaction, _ []core.CustomCategory) (string, error) {
	g.calls++
	g.got = txs
	return g.content, g.err
}

// failingStore fails every grouped read while delegating the rest.
type failingStore struct {
	*memory.Store
}

func (failingStore) GroupSum(context.Context, core.TransactionFilter, core.GroupKey) ([]core.GroupValue, error) {
	return nil, errBoom
}

func seedTx(t *testing.T, s *memory.Store, owner string, typ core.TransactionType, category, amount string, date time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:            owner + "-" + date.Format("20060102150405.000") + "-" + category + "-" + amount,
		OwnerID:       owner,
		Name:          category,
		Amount:        decimal.RequireFromString(amount),
		Type:          typ,
		Category:      category,
		PaymentMethod: core.Pix,
		Date:          date,
		CreatedAt:     date,
		UpdatedAt:     date,
	}
	if err := s.Create(context.Background(), tx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tx
}

// seedTxCreated stores an expense whose creation time differs from its
// transaction date.
func seedTxCreated(t *testing.T, s *memory.Store, owner, id string, date, created time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:            owner + "-" + id,
		OwnerID:       owner,
		Name:          "entry " + id,
		Amount:        decimal.NewFromInt(5),
		Type:          core.Expense,
		Category:      "FOOD",
		PaymentMethod: core.Cash,
		Date:          date,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if err := s.Create(context.Background(), tx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tx
}

func input(name, amount string, typ core.TransactionType, category string, date time.Time) core.TransactionInput {
	return core.TransactionInput{
		Name:          name,
		Amount:        decimal.RequireFromString(amount),
		Type:          typ,
		Category:      category,
		PaymentMethod: core.CreditCard,
		Date:          date,
	}
}
