package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/config"
	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/dashboard"
	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
	"github.com/gokatarajesh/lgs-tracker/internal/logging"
	"github.com/gokatarajesh/lgs-tracker/internal/metrics"
	"github.com/gokatarajesh/lgs-tracker/internal/ranking"
	"github.com/gokatarajesh/lgs-tracker/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	snapshotWorker *ranking.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().In(loc) }

	catalog, err := curriculum.Load(cfg.CurriculumFile)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN()+"&pool_max_conns=10")
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	resultRepo := repository.NewResultRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	mistakeRepo := repository.NewMistakeRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)

	m := metrics.New(prometheus.DefaultRegisterer)

	rankingSvc := ranking.NewService(redisClient, logger, ranking.ServiceOptions{
		TopN:             cfg.Ranking.TopN,
		RedisKeyPrefix:   cfg.Ranking.KeyPrefix,
		SnapshotTopLimit: cfg.Ranking.SnapshotTopN,
		Now:              now,
	})
	var snapshotWorker *ranking.SnapshotWorker
	if interval := cfg.Ranking.SnapshotInterval; interval > 0 {
		snapshotWorker = ranking.NewSnapshotWorker(rankingSvc, snapshotRepo, interval, logger)
	}

	dashboardSvc := dashboard.NewService(dashboard.Stores{
		Results:  resultRepo,
		Exams:    examRepo,
		Mistakes: mistakeRepo,
		Progress: progressRepo,
		Ranking:  rankingSvc,
		Cache:    dashboard.NewCache(redisClient, cfg.Dashboard.CacheTTL),
	}, catalog, m, logger, dashboard.ServiceOptions{
		Penalty:        cfg.Scoring.Policy(),
		Progress:       cfg.Progress.Engine(),
		DefaultGoals:   cfg.Progress.Goals(),
		TrendWindow:    cfg.Dashboard.TrendWindow,
		LastN:          cfg.Dashboard.LastN,
		ExamWindow:     cfg.Dashboard.ExamWindow,
		WeakestN:       cfg.Dashboard.WeakestN,
		ReviewInterval: cfg.Dashboard.ReviewInterval,
		Now:            now,
	})

	apiServer := server.NewHTTPServer(cfg, logger, map[string]server.Pinger{
		"postgres": pool,
		"redis":    server.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}, server.Handlers{
		Dashboard: dashboard.NewHTTPHandlers(dashboardSvc, cfg.Dashboard.ListPageSize(), logger),
		Ranking:   ranking.NewHTTPHandler(rankingSvc, snapshotRepo, logger),
	})

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("ranking snapshot worker stopped")
			}
		}()
	}
}
