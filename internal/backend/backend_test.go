package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sqlite"}); err == nil {
		t.Fatal("expected error for sqlite without a path")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: " SQLite ", SQLiteDBPath: "x.db"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Fatalf("unexpected result %+v, %v", cfg, err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db")}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer res.Cleanup()
			if err := res.Store.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if _, err := res.Store.GetSubscription(ctx, "u1"); err != nil {
				t.Fatalf("store not usable: %v", err)
			}
		})
	}
}

func TestNewDashboardCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"none", config.Config{CacheBackend: "none"}, false},
		{"memory", config.Config{CacheBackend: "memory", CacheSize: 10, CacheTTL: time.Minute}, false},
		{"redis", config.Config{CacheBackend: "redis", RedisAddr: mr.Addr(), CacheTTL: time.Minute}, false},
		{"redis unreachable", config.Config{CacheBackend: "redis", RedisAddr: "127.0.0.1:1", CacheTTL: time.Minute}, true},
		{"unknown", config.Config{CacheBackend: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := NewDashboardCache(ctx, &tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer dc.Cleanup()

			gen, err := dc.Generations.Current(ctx, "u1")
			if err != nil {
				t.Fatalf("generation: %v", err)
			}
			key := cache.DashboardKey("u1", gen, 2024, 3)
			if err := dc.Cache.Set(ctx, key, core.DashboardSummary{Year: 2024, Month: 3}); err != nil {
				t.Fatalf("set: %v", err)
			}
			_, ok, err := dc.Cache.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if want := tt.cfg.CacheBackend != "none"; ok != want {
				t.Errorf("hit = %v, want %v", ok, want)
			}
			if again, _ := dc.Generations.Current(ctx, "u1"); (again == gen) != (tt.cfg.CacheBackend != "none") {
				t.Errorf("generation stability = %v for backend %q", again == gen, tt.cfg.CacheBackend)
			}
		})
	}
}
