package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"userhub.org/internal/auth"
	"userhub.org/internal/config"
	"userhub.org/internal/httpapi"
	"userhub.org/internal/obs"
	"userhub.org/internal/user"
	"userhub.org/migrations"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// Configuration is built exactly once; a missing required setting stops
	// the process here instead of failing per-request later.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := obs.InitLogger(cfg.IsDevelopment()); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer obs.Sync()
	obs.Init()
	obs.InitBuildInfo(version, commit)

	logger := obs.Logger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := runMigrations(db); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	tokens, err := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("token manager", zap.Error(err))
	}

	var store user.Store = user.NewPGStore(db)

	// Redis backs both the list cache and the rate limit counters so a
	// horizontally scaled deployment shares one view of both. Without Redis
	// (local development) the cache is skipped and the limiter counts
	// in-process.
	var (
		rdb          *redis.Client
		limiterStore limiter.Store
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping", zap.Error(err))
		}
		cancel()

		store = user.NewCachedStore(store, rdb, cfg.CacheTTL)
		limiterStore, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix:   "userhub:ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			logger.Fatal("rate limit store", zap.Error(err))
		}
	} else {
		logger.Warn("redis not configured; list cache disabled, rate limit counters are process-local")
		limiterStore = memory.NewStore()
	}

	lim := limiter.New(limiterStore, limiter.Rate{
		Period: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitMax,
	})

	users := user.NewService(store, tokens, cfg.BcryptCost)

	probe := httpapi.ReadyProbe{DB: db}
	if rdb != nil {
		probe.Redis = rdb
	}

	api := httpapi.New(cfg, users, tokens, lim, probe, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting userhub-api",
		zap.String("version", version),
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.Env))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	logger.Info("stopped")
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return goose.UpContext(ctx, db, ".")
}
