package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"

	"github.com/robertarktes/park-bookings/internal/adapters/crdb"
	redisadapter "github.com/robertarktes/park-bookings/internal/adapters/redis"
	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/config"
	"github.com/robertarktes/park-bookings/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "park-stats-worker")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger(cfg.LogLevel)
	observability.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	redisCache := redisadapter.NewCache(redisClient)

	bookings := booking.NewService(repo.Reservations(), logger,
		booking.WithPopularityCache(redisCache, cfg.StatsCacheTTL))

	worker := NewStatsWorker(bookings, logger)
	worker.Run(ctx, cfg.StatsRefreshInterval)
	logger.Info("Shutdown stats worker")
}
