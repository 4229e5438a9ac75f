package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/diigo-mcp/internal/bookmarks"
	"github.com/MrSnakeDoc/diigo-mcp/internal/config"
	"github.com/MrSnakeDoc/diigo-mcp/internal/diigo"
	"github.com/MrSnakeDoc/diigo-mcp/internal/httpserver"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
	"github.com/MrSnakeDoc/diigo-mcp/internal/mcp"
	"github.com/MrSnakeDoc/diigo-mcp/internal/redis"
	"github.com/MrSnakeDoc/diigo-mcp/internal/scheduler"
	"github.com/MrSnakeDoc/diigo-mcp/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/diigo-mcp/internal/store/redis"
	"github.com/MrSnakeDoc/diigo-mcp/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	stdio       *mcp.Server
	httpServer  *httpserver.Server // nil unless a listen port is configured
	redisClient *goredis.Client    // nil unless Redis caching is enabled
	janitor     *scheduler.Janitor // nil unless the in-memory cache is used
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// List cache: Redis when configured and reachable, in-memory
	// otherwise. The API stays authoritative either way, so an
	// unreachable Redis downgrades instead of refusing to start.
	var cache bookmarks.Cache
	var redisClient *goredis.Client
	var janitor *scheduler.Janitor
	if cfg.RedisAddr != "" {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warnf("redis unavailable, falling back to in-memory cache: %v", err)
			redisClient = nil
		} else {
			cache = redisstore.NewCache(redisClient, cfg.CacheTTL, loggerClient)
		}
	}
	if cache == nil {
		memCache := memory.NewCache(cfg.CacheTTL, loggerClient)
		janitor = scheduler.NewJanitor(memCache, loggerClient, cfg.CacheTTL)
		cache = memCache
	}

	client, err := diigo.NewClient(diigo.Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Timeout:     cfg.RequestTimeout,
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.RetryBackoff,
		Logger:      loggerClient,
	})
	if err != nil {
		return nil, err
	}

	svc := bookmarks.New(bookmarks.Options{
		Client:      client,
		DefaultUser: cfg.Username,
		PageSize:    cfg.MaxBookmarksPerRequest,
		BulkDelay:   cfg.BulkDelay,
		Cache:       cache,
		Logger:      loggerClient,
	})

	handler := mcp.NewHandler(svc, loggerClient)

	a := &App{
		cfg:         cfg,
		logger:      loggerClient,
		stdio:       mcp.NewServer(handler, loggerClient),
		redisClient: redisClient,
		janitor:     janitor,
	}
	if cfg.ListenPort != "" {
		a.httpServer = httpserver.New(cfg, loggerClient, handler)
	}
	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting diigo-mcp %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.janitor != nil {
		a.janitor.Start(ctx)
		defer a.janitor.Stop()
	}

	errCh := make(chan error, 2)

	if a.httpServer != nil {
		go func() {
			if err := a.httpServer.Start(); err != nil {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	// The stdio loop is the primary transport; it ends on stdin EOF.
	go func() {
		errCh <- a.stdio.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		// stdin closed: the host is done with us.
	}

	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop http server: %w", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("✅ diigo-mcp stopped cleanly")
	return nil
}
