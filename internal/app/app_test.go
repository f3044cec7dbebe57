package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/config"
	"github.com/MrSnakeDoc/vidmark/internal/domain"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
)

func baseConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		ListenPort:      "127.0.0.1:0",
		ShutdownTimeout: time.Second,
		Store:           config.BackendMemory,
		SQLitePath:      filepath.Join(dir, "vidmark.db"),
		FilePath:        filepath.Join(dir, "vidmark.json"),
		BrowserBackend:  config.BackendMemory,
		AllowedOrigins:  []string{"*"},

		RedisConnectTimeout: time.Second,
		RedisRetryInterval:  10 * time.Millisecond,
		RedisMaxWait:        50 * time.Millisecond,
		RedisPingTimeout:    100 * time.Millisecond,
		RedisDT:             100 * time.Millisecond,
		RedisRT:             100 * time.Millisecond,
		RedisWT:             100 * time.Millisecond,
	}
}

func TestOpenBackends(t *testing.T) {
	tests := []struct {
		name    string
		store   string
		browser string
	}{
		{name: "memory", store: config.BackendMemory, browser: config.BackendMemory},
		{name: "sqlite", store: config.BackendSQLite, browser: config.BackendMemory},
		{name: "file", store: config.BackendFile, browser: config.BackendMemory},
		{name: "redis", store: config.BackendRedis, browser: config.BackendRedis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := baseConfig(t)
			cfg.Store = tt.store
			cfg.BrowserBackend = tt.browser
			cfg.GrantBookmarks = true
			if cfg.NeedsRedis() {
				cfg.RedisAddr = miniredis.RunT(t).Addr()
			}

			a, err := Open(ctx, cfg, logger.NewNop())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer a.Close()

			if err := a.Options.Set(ctx, options.ManageBrowserBookmark, true); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := a.Registry.Create(ctx, &domain.RawVideo{Src: "a", BaseURL: "p", Duration: 10}); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			v, ok := a.Registry.Get("a")
			if !ok {
				t.Fatal("Get(a) = false after Create")
			}
			if _, has := v.ExternalBookmarkID(); !has {
				t.Error("granted bookmarks permission should mirror the bookmark")
			}

			granted, err := a.Grants.Contains(ctx, browser.PermissionBookmarks)
			if err != nil || !granted {
				t.Errorf("Contains(bookmarks) = %v, %v", granted, err)
			}
		})
	}
}

func TestOpenRestoresState(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(t)
	cfg.Store = config.BackendSQLite

	first, err := Open(ctx, cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.Registry.Create(ctx, &domain.RawVideo{Src: "a", BaseURL: "p", Duration: 10}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := Open(ctx, cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	if !second.Registry.Has("a") {
		t.Error("bookmark should survive a restart with the sqlite store")
	}
}

func TestOpenRedisUnavailable(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Store = config.BackendRedis
	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	mr.Close()

	if _, err := Open(context.Background(), cfg, logger.NewNop()); err == nil {
		t.Fatal("Open() should fail when redis is unreachable")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := baseConfig(t)
	a, err := Open(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}
