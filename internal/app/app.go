package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/config"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/kv"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
	"github.com/MrSnakeDoc/vidmark/internal/redis"
	"github.com/MrSnakeDoc/vidmark/internal/registry"
	"github.com/MrSnakeDoc/vidmark/internal/scheduler"
	"github.com/MrSnakeDoc/vidmark/internal/store/file"
	"github.com/MrSnakeDoc/vidmark/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/vidmark/internal/store/redis"
	"github.com/MrSnakeDoc/vidmark/internal/store/sqlite"
	"github.com/MrSnakeDoc/vidmark/internal/version"
)

// App holds the wired components. Open builds everything the CLI needs;
// Serve adds the HTTP server and the sweeper on top.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	Registry *registry.Registry
	Options  *options.Manager
	Grants   *browser.GrantStore

	store     kv.Store
	storePing func(context.Context) error
	closers   []func() error
}

// Open connects the configured backends and restores persisted state.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	var redisClient *goredis.Client
	if cfg.NeedsRedis() {
		client, err := redis.Connect(ctx, redis.Options{
			Addr:           cfg.RedisAddr,
			Username:       cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			PoolSize:       cfg.RedisPoolSize,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		redisClient = client
		a.closers = append(a.closers, client.Close)
	}

	if err := a.openStore(ctx, redisClient); err != nil {
		_ = a.Close()
		return nil, err
	}

	var tree browser.Service
	switch cfg.BrowserBackend {
	case config.BackendRedis:
		tree = redisstore.NewTree(redisClient)
	default:
		tree = browser.NewMemoryTree()
	}

	a.Grants = browser.NewGrantStore(a.store)
	if cfg.GrantBookmarks {
		if err := a.Grants.Grant(ctx, browser.PermissionBookmarks); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to grant bookmarks permission: %w", err)
		}
	}

	a.Options = options.NewManager(a.store, log)
	a.Registry = registry.New(a.Options, a.store, tree, a.Grants, log)

	loader := scheduler.NewLoader(a.Options, a.Registry, cfg.OptionsFile, log)
	if err := loader.Load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	log.Info("vidmark ready",
		logger.String("store", cfg.Store),
		logger.String("browser_backend", cfg.BrowserBackend))
	return a, nil
}

func (a *App) openStore(ctx context.Context, redisClient *goredis.Client) error {
	switch a.cfg.Store {
	case config.BackendRedis:
		s := redisstore.NewStore(redisClient)
		a.store, a.storePing = s, s.Ping
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, a.cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.store, a.storePing = s, s.Ping
		a.closers = append(a.closers, s.Close)
	case config.BackendFile:
		s, err := file.New(a.cfg.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open file store: %w", err)
		}
		a.store = s
	case config.BackendMemory:
		a.logger.Warn("memory store selected, nothing survives a restart")
		a.store = memory.New()
	default:
		return fmt.Errorf("unknown store backend %q", a.cfg.Store)
	}
	return nil
}

// Serve runs the HTTP API and the sweeper until ctx is cancelled or SIGINT /
// SIGTERM is received, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("🚀 starting vidmark",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("built", version.BuildDate),
		logger.String("go", version.GoVersion),
		logger.String("addr", a.cfg.ListenPort))
	if a.cfg.LogLevel == "debug" {
		a.logger.Debug("configuration", logger.Any("config", a.cfg.Redacted()))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := scheduler.NewSweeper(a.Registry, a.logger, a.cfg.SweepInterval)
	sweeper.Start(ctx)
	a.logger.Info("sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	server := httpserver.New(a.cfg, a.logger, deps.Deps{
		Logger:       a.logger,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Registry:     a.Registry,
		Options:      a.Options,
		Grants:       a.Grants,
		StoreBackend: a.cfg.Store,
		StorePing:    a.storePing,
		SweepTrigger: sweeper.Trigger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ shutting down gracefully")

		sweeper.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("✅ vidmark stopped cleanly")
	return nil
}

// Close releases the backend connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
