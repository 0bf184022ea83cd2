package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"

	"github.com/robertarktes/park-bookings/internal/adapters/crdb"
	redisadapter "github.com/robertarktes/park-bookings/internal/adapters/redis"
	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/catalog"
	"github.com/robertarktes/park-bookings/internal/config"
	"github.com/robertarktes/park-bookings/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg.LogLevel)

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

	bookings := booking.NewService(repo.Reservations(), logger,
		booking.WithInputTimeout(cfg.PaymentInputTimeout))
	inventory := catalog.NewService(repo.Attractions(), redisadapter.NewCache(redisClient), cfg.AttractionsCacheTTL, logger)

	kiosk := NewKiosk(bookings, inventory, os.Stdin, os.Stdout, logger)
	if err := kiosk.Serve(ctx); err != nil {
		logger.WithError(err).Error("kiosk stopped")
		os.Exit(1)
	}
}
