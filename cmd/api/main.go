package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/robertarktes/park-bookings/internal/accounts"
	"github.com/robertarktes/park-bookings/internal/adapters/crdb"
	redisadapter "github.com/robertarktes/park-bookings/internal/adapters/redis"
	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/catalog"
	"github.com/robertarktes/park-bookings/internal/config"
	httphandler "github.com/robertarktes/park-bookings/internal/http"
	"github.com/robertarktes/park-bookings/internal/idempotency"
	"github.com/robertarktes/park-bookings/internal/observability"
	"github.com/robertarktes/park-bookings/internal/rateLimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "park-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

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
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	redisCache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL, logger)
	rl := rateLimit.NewRateLimiter(redisCache, cfg.RateLimit, cfg.RateLimitPeriod, logger)

	bookings := booking.NewService(repo.Reservations(), logger,
		booking.WithInputTimeout(cfg.PaymentInputTimeout),
		booking.WithPopularityCache(redisCache, cfg.StatsCacheTTL),
	)
	inventory := catalog.NewService(repo.Attractions(), redisCache, cfg.AttractionsCacheTTL, logger)
	people := accounts.NewService(repo.Persons(), cfg.BcryptCost, logger)

	handlers := httphandler.NewHandlers(bookings, inventory, people,
		httphandler.ReadinessCheck{Name: "crdb", Check: repo.Ping},
		httphandler.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	r := httphandler.SetupRouter(handlers, logger, rl, idemp)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown Server ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
