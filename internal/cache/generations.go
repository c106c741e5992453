package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Generations keeps one opaque token per owner in a shared cache. Summary
// keys embed the token, and writers rotate it after committing, so a summary
// built from data read before a write can only be stored under a key nobody
// asks for again.
type Generations struct {
	store Cache[string]
	mint  func() string
}

// NewGenerations keeps tokens in store. A nil store yields fresh tokens on
// every call, which disables summary caching.
func NewGenerations(store Cache[string]) *Generations {
	if store == nil {
		store = Noop[string]{}
	}
	return &Generations{store: store, mint: uuid.NewString}
}

// Current returns the owner's token, creating one when none is stored.
// Callers must read it before reading the data they intend to cache.
func (g *Generations) Current(ctx context.Context, owner string) (string, error) {
	tok, ok, err := g.store.Get(ctx, GenerationKey(owner))
	if err != nil {
		return "", err
	}
	if ok && tok != "" {
		return tok, nil
	}
	return g.Rotate(ctx, owner)
}

// Rotate replaces the owner's token and returns the new one.
func (g *Generations) Rotate(ctx context.Context, owner string) (string, error) {
	tok := g.mint()
	if err := g.store.Set(ctx, GenerationKey(owner), tok); err != nil {
		return "", err
	}
	return tok, nil
}

// GenerationKey is where an owner's token lives.
func GenerationKey(owner string) string {
	return "dashboard-gen:" + owner
}

// DashboardKey is the cache key of an owner's month summary under a
// generation token.
func DashboardKey(owner, generation string, year, month int) string {
	return fmt.Sprintf("dashboard:%s:%s:%04d-%02d", owner, generation, year, month)
}
