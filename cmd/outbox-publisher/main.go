package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/robertarktes/park-bookings/internal/adapters/crdb"
	"github.com/robertarktes/park-bookings/internal/adapters/rabbit"
	"github.com/robertarktes/park-bookings/internal/config"
	"github.com/robertarktes/park-bookings/internal/observability"
	"github.com/robertarktes/park-bookings/internal/outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "park-outbox-publisher")
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

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	rabbitPub, err := rabbit.NewPublisher(conn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}
	defer rabbitPub.Close()

	cb := config.NewCircuitBreaker("rabbit-publish", cfg.OutboxPollInterval*10, logger)
	relay := outbox.NewRelay(repo, rabbitPub, cb, logger, cfg.OutboxPollInterval, cfg.OutboxBatch)

	logger.Info("Outbox publisher started")
	relay.Run(ctx)
	logger.Info("Shutdown outbox publisher")
}
