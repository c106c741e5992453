package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type summary struct {
	Owner string `json:"owner"`
	Total int    `json:"total"`
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected hit for a")
	}
	c.Set(ctx, "c", 3)

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok, _ := c.Get(ctx, "a"); !ok || v != 1 {
		t.Fatalf("a should survive, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k1", "v1")
	c.Set(ctx, "k2", "v2")
	now = now.Add(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Fatalf("expired entry returned")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCacheDeleteMany(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Set(ctx, "c", 3)
	c.Delete(ctx, "a", "b", "missing")
	if c.Size() != 1 {
		t.Fatalf("expected 1 left, got %d", c.Size())
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	c := NewRedisCache[summary](client, time.Minute)
	key := DashboardKey("u1", "g1", 2024, 3)
	if key != "dashboard:u1:g1:2024-03" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, summary{Owner: "u1", Total: 42}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || got.Total != 42 {
		t.Fatalf("unexpected get: %+v ok=%v err=%v", got, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatalf("entry should have expired")
	}

	c.Set(ctx, key, summary{Owner: "u1"})
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("key still present after delete")
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Nanosecond)
	c.Set(ctx, "a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	if c.Size() != 0 {
		t.Fatalf("expired entry not cleaned")
	}
}

func TestNoop(t *testing.T) {
	var c Cache[int] = Noop[int]{}
	c.Set(context.Background(), "a", 1)
	if _, ok, _ := c.Get(context.Background(), "a"); ok {
		t.Fatalf("noop cache must never hit")
	}
}

func TestGenerationsRotate(t *testing.T) {
	ctx := context.Background()
	g := NewGenerations(NewLRUCache[string](10, time.Hour))

	first, err := g.Current(ctx, "u1")
	if err != nil || first == "" {
		t.Fatalf("current: %q, %v", first, err)
	}
	if again, _ := g.Current(ctx, "u1"); again != first {
		t.Fatalf("token changed without a write: %q then %q", first, again)
	}
	if other, _ := g.Current(ctx, "u2"); other == first {
		t.Fatalf("owners share a token")
	}

	rotated, err := g.Rotate(ctx, "u1")
	if err != nil || rotated == first {
		t.Fatalf("rotate: %q, %v", rotated, err)
	}
	if now, _ := g.Current(ctx, "u1"); now != rotated {
		t.Fatalf("current = %q, want rotated %q", now, rotated)
	}
}

func TestGenerationsRecoverLostToken(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	g := NewGenerations(NewRedisCache[string](client, time.Minute))
	first, _ := g.Current(ctx, "u1")
	if !mr.Exists(GenerationKey("u1")) {
		t.Fatalf("token not stored in redis")
	}

	mr.FastForward(2 * time.Minute)
	next, err := g.Current(ctx, "u1")
	if err != nil || next == "" || next == first {
		t.Fatalf("expired token must be replaced, got %q (first %q) err=%v", next, first, err)
	}
}

func TestGenerationsWithoutStore(t *testing.T) {
	g := NewGenerations(nil)
	a, _ := g.Current(context.Background(), "u1")
	b, _ := g.Current(context.Background(), "u1")
	if a == b {
		t.Fatalf("tokens must differ when nothing is stored")
	}
}
