package apiapp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	goredis "github.com/redis/go-redis/v9"

	"shorty/internal/adapters/httpapi"
	"shorty/internal/adapters/httpapi/plugins"
	pgrepo "shorty/internal/adapters/postgres"
	redcache "shorty/internal/adapters/redis"
	"shorty/internal/app/links"
	"shorty/internal/platform/config"
	"shorty/internal/platform/postgres"
	"shorty/internal/platform/redisconn"
)

type App struct {
	cfg     config.Config
	log     *slog.Logger
	db      *sql.DB
	rdb     *goredis.Client
	sweeper *links.Sweeper
	router  http.Handler
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	initSentry(cfg, logger)

	db, err := postgres.Open(ctx, postgres.OpenConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	repo := pgrepo.NewRepo(db)

	var (
		rdb   *goredis.Client
		cache links.Cache = links.NopCache{}
	)

	if cfg.RedisAddr != "" {
		rdb, err = redisconn.Open(ctx, redisconn.OpenConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("open redis: %w", err)
		}

		cache = redcache.NewCache(rdb)
	} else {
		logger.Info("redis cache disabled")
	}

	gen := newGenerator(cfg, repo)

	svc := links.New(repo, cache, gen, links.Options{
		DefaultTTL:  cfg.DefaultTTL,
		CacheMaxTTL: cfg.CacheMaxTTL,
		Logger:      linksSlogLogger{l: logger},
	})

	sweeper := links.NewSweeper(repo, cfg.SweepInterval, cfg.SweepTimeout, linksSlogLogger{l: logger})

	r := httpapi.NewEngine(
		plugins.Logger(),
		plugins.Sentry(cfg.SentryMiddlewareTimeout),
		plugins.Recovery(),
		plugins.RequestID(),
		plugins.RequestTimeout(cfg.RequestBudget),
		plugins.CORS(cfg.CORSAllowedOrigins),
	)

	httpapi.RegisterRoutes(r, httpapi.RouterDeps{
		Links:   svc,
		BaseURL: cfg.BaseURL,
	})

	return &App{
		cfg:     cfg,
		log:     logger,
		db:      db,
		rdb:     rdb,
		sweeper: sweeper,
		router:  r,
	}, nil
}

func initSentry(cfg config.Config, logger *slog.Logger) {
	if cfg.SentryDSN == "" {
		logger.Info("sentry disabled: empty DSN")

		return
	}

	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
		logger.Warn("sentry disabled", "error", err)
	}
}

func newGenerator(cfg config.Config, repo links.IDSource) links.CodeGenerator {
	if cfg.CodeStrategy == config.StrategySequential {
		return links.NewSequentialGenerator(repo)
	}

	return links.NewRandomGenerator(cfg.CodeLength)
}

func (a *App) Close() error {
	sentry.Flush(a.cfg.SentryFlushTimeout)

	if a.rdb != nil {
		_ = a.rdb.Close()
	}

	if a.db == nil {
		return nil
	}

	return a.db.Close()
}

func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()

	go a.sweeper.Run(sweepCtx)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: a.cfg.HTTPReadHeaderTimeout,
		ReadTimeout:       a.cfg.HTTPReadTimeout,
		WriteTimeout:      a.cfg.HTTPWriteTimeout,
		IdleTimeout:       a.cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		return gracefulShutdown(ctx, srv, a.cfg.HTTPShutdownTimeout, errCh)
	}
}

func gracefulShutdown(ctx context.Context, srv *http.Server, timeout time.Duration, errCh <-chan error) error {
	srv.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("http shutdown timed out; forced close: %w", err)
		}

		return fmt.Errorf("http shutdown failed; forced close: %w", err)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server stopped with error: %w", err)
	default:
		return nil
	}
}
