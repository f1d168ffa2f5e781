package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/bookshelf/internal/cache"
	"github.com/actuallystonmai/bookshelf/internal/config"
	"github.com/actuallystonmai/bookshelf/internal/engine"
	"github.com/actuallystonmai/bookshelf/internal/handler"
	"github.com/actuallystonmai/bookshelf/internal/logging"
	"github.com/actuallystonmai/bookshelf/internal/metrics"
	"github.com/actuallystonmai/bookshelf/internal/repository"
	"github.com/actuallystonmai/bookshelf/internal/router"
	"github.com/actuallystonmai/bookshelf/internal/service"
	"github.com/actuallystonmai/bookshelf/internal/snapshot"
	"github.com/actuallystonmai/bookshelf/seeds"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ Snapshot Source ---------------
	src, cleanup, err := openSource(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("source", cfg.SnapshotSource).Msg("failed to open snapshot source")
	}
	defer cleanup()
	if src == nil {
		// migrate-down ran and there is nothing left to serve
		return
	}

	snap, err := snapshot.Load(ctx, src)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load snapshot")
	}
	metrics.CatalogBooks.Set(float64(snap.Catalog.Len()))

	eng, err := engine.New(snap.Catalog, snap.Matrix, cfg.MaxSeeds)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build engine")
	}

	// ------------ Redis ---------------
	var recCache service.RecommendationCache
	if cfg.CacheEnabled {
		if c, closeRedis, err := connectCache(ctx, cfg, snap.Fingerprint); err != nil {
			logging.Warn().Err(err).Msg("[cache] redis unavailable, running without cache")
		} else {
			defer closeRedis()
			recCache = c
		}
	}

	// ---------------- Server --------------------
	svc := service.NewService(eng, recCache, snap.Fingerprint, service.Options{
		DefaultTopN:      cfg.DefaultTopN,
		MaxTopN:          cfg.MaxTopN,
		MaxBatchSize:     cfg.MaxBatchSize,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	h := handler.NewHandler(svc)
	r := router.Setup(h, router.Options{
		RequestTimeout:    cfg.RequestTimeout,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		AllowedOrigins:    cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Int("books", snap.Catalog.Len()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openSource returns the configured snapshot source and a cleanup func.
// A nil source with a nil error means a one-off command already ran.
func openSource(ctx context.Context, cfg *config.Config) (snapshot.Source, func(), error) {
	noop := func() {}

	switch cfg.SnapshotSource {
	case config.SourceSQLite:
		repo, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		if cfg.SeedDemo {
			if err := seedSQLite(ctx, repo); err != nil {
				repo.Close()
				return nil, noop, err
			}
		}
		return repo, func() { repo.Close() }, nil

	case config.SourceFile:
		return snapshot.NewFileSource(cfg.CatalogFile, cfg.SimilarityFile), noop, nil
	}

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, noop, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, noop, fmt.Errorf("connect to database: %w", err)
	}
	closePool := func() { pool.Close() }

	if err := waitForDB(ctx, pool); err != nil {
		closePool()
		return nil, noop, fmt.Errorf("database not ready: %w", err)
	}
	logging.Info().Msg("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			closePool()
			return nil, noop, fmt.Errorf("migrate down: %w", err)
		}
		logging.Info().Msg("migrations dropped")
		return nil, closePool, nil
	}

	if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		closePool()
		return nil, noop, fmt.Errorf("migrate up: %w", err)
	}
	logging.Info().Msg("migrations applied")

	// ------------ Setup Seed Data ---------------
	repo := repository.New(pool)
	if cfg.SeedDemo {
		if err := checkSeed(ctx, pool, repo); err != nil {
			closePool()
			return nil, noop, err
		}
	}
	return repo, closePool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository) error {
	count, err := repo.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("check seed: %w", err)
	}
	if count > 0 {
		logging.Info().Int("books", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}

func seedSQLite(ctx context.Context, repo *repository.SQLiteRepository) error {
	existing, err := repo.Books(ctx)
	if err != nil {
		return fmt.Errorf("check seed: %w", err)
	}
	if len(existing) > 0 {
		logging.Info().Int("books", len(existing)).Msg("database already seeded, skipping")
		return nil
	}

	books, scores := seeds.Books(rand.New(rand.NewSource(42)))
	if err := repo.Import(ctx, books, seeds.Pairs(books, scores)); err != nil {
		return fmt.Errorf("seed sqlite: %w", err)
	}
	logging.Info().Int("books", len(books)).Msg("[seed] sqlite seeding complete")
	return nil
}

func connectCache(ctx context.Context, cfg *config.Config, fingerprint string) (*cache.Cache, func(), error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	c := cache.NewCache(client, cfg.CacheTTL)

	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	logging.Info().Msg("connected to Redis")

	removed, err := c.ClearStale(ctx, fingerprint)
	if err != nil {
		logging.Warn().Err(err).Msg("[cache] failed to clear stale entries")
	} else if removed > 0 {
		logging.Info().Int("removed", removed).Msg("[cache] cleared entries from previous snapshots")
	}
	return c, func() { client.Close() }, nil
}
