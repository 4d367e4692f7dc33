package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/config"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/redis"
	"github.com/MrSnakeDoc/skyroute/internal/scheduler"
	"github.com/MrSnakeDoc/skyroute/internal/sources/specs"
	"github.com/MrSnakeDoc/skyroute/internal/stats"
	redisstore "github.com/MrSnakeDoc/skyroute/internal/store/redis"
	"github.com/MrSnakeDoc/skyroute/internal/upstream"
	"github.com/MrSnakeDoc/skyroute/internal/utils"
	"github.com/MrSnakeDoc/skyroute/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	holder      *catalog.Holder
	reloader    *scheduler.CatalogReloader
	flusher     *scheduler.StatsFlusher
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config) logger.Logger {
	return logger.NewWithFile(cfg.LogLevel, cfg.PrettyLog, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
}

func New(cfg *config.Config) (*App, error) {
	loggerClient := NewLogger(cfg)

	holder := catalog.NewHolder(nil)
	recorder := stats.NewRecorder(stats.DefaultMaxUnknown)

	// Redis is optional: without it the router works, only persistence is lost
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		saver       scheduler.CatalogSaver
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, continuing without persistence", logger.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewStore(client)
			saver = store
			loggerClient.Info("Redis initialized successfully")

			// Serve the last known catalog while the definition files load
			syncer := scheduler.NewRedisSyncer(store, holder, loggerClient)
			if err := syncer.Sync(context.Background()); err != nil {
				loggerClient.Warn("failed to sync from redis on startup, will load from files",
					logger.Error(err))
			}
		}
	} else {
		loggerClient.Info("redis not configured, stats and catalog snapshots are not persisted")
	}

	upstreams, err := upstream.NewRegistry(cfg.Upstreams, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstreams: %w", err)
	}
	for name, target := range upstreams.Targets() {
		loggerClient.Info("upstream registered",
			logger.String("service", name),
			logger.String("target", target))
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewCatalogReloader(
		specs.NewSource(cfg.SpecDir, cfg.CatalogFile, loggerClient),
		saver,
		holder,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	var flusher *scheduler.StatsFlusher
	if store != nil {
		flusher = scheduler.NewStatsFlusher(
			recorder,
			store,
			loggerClient,
			cfg.StatsFlushInterval,
			cfg.StatsBreakerTimeout,
		)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		AdminHosts:      cfg.AdminHosts,
		AdminCIDRS:      cfg.AdminCIDRS,
		TrustProxy:      cfg.TrustProxy,
		ReloadBurst:     cfg.ReloadBurst,
		ReloadPerMin:    cfg.ReloadPerMin,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Catalog:         holder,
		Store:           store,
		Recorder:        recorder,
		Upstreams:       upstreams,
		UpstreamTimeout: cfg.UpstreamTimeout,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		holder:      holder,
		reloader:    reloader,
		flusher:     flusher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting skyroute %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("skyroute %s", version.String())
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog reloader (loads services and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Int("services", a.holder.Load().Count()),
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.flusher != nil {
		// outlives the signal context: it flushes once more on Stop
		a.flusher.Start(context.WithoutCancel(ctx))
		a.logger.Info("stats flusher started",
			logger.Duration("interval", a.cfg.StatsFlushInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.reloader.Stop()
		if a.flusher != nil {
			a.flusher.Stop()
		}
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Flush after the server stopped, so the last requests are counted
	if a.flusher != nil {
		a.flusher.Stop()
	}

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}

	a.logger.Info("✅ skyroute stopped cleanly")
	return nil
}
