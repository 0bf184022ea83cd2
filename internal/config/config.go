package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	CRDBDSN      string
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	RabbitURL    string
	OTLPEndpoint string
	HTTPAddr     string
	LogLevel     string

	PaymentInputTimeout  time.Duration
	AttractionsCacheTTL  time.Duration
	StatsRefreshInterval time.Duration
	StatsCacheTTL        time.Duration
	IdempotencyTTL       time.Duration
	BcryptCost           int

	OutboxPollInterval time.Duration
	OutboxBatch        int

	RateLimit       int
	RateLimitPeriod time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CRDBDSN:      os.Getenv("CRDB_DSN"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getenv("MONGO_DB", "park"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}

	var err error
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"PAYMENT_INPUT_TIMEOUT", 0, &cfg.PaymentInputTimeout},
		{"ATTRACTIONS_CACHE_TTL", time.Minute, &cfg.AttractionsCacheTTL},
		{"STATS_REFRESH_INTERVAL", time.Minute, &cfg.StatsRefreshInterval},
		{"STATS_CACHE_TTL", 5 * time.Minute, &cfg.StatsCacheTTL},
		{"IDEMPOTENCY_TTL", time.Hour, &cfg.IdempotencyTTL},
		{"OUTBOX_POLL_INTERVAL", 5 * time.Second, &cfg.OutboxPollInterval},
		{"RATE_LIMIT_PERIOD", time.Minute, &cfg.RateLimitPeriod},
	}
	for _, d := range durations {
		if *d.dst, err = durationEnv(d.key, d.def); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"BCRYPT_COST", bcrypt.DefaultCost, &cfg.BcryptCost},
		{"OUTBOX_BATCH", 10, &cfg.OutboxBatch},
		{"RATE_LIMIT", 60, &cfg.RateLimit},
	}
	for _, i := range ints {
		if *i.dst, err = intEnv(i.key, i.def); err != nil {
			return nil, err
		}
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, errors.Newf("BCRYPT_COST %d out of range [%d, %d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	if d < 0 {
		return 0, errors.Newf("%s must not be negative", key)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	if n <= 0 {
		return 0, errors.Newf("%s must be positive", key)
	}
	return n, nil
}
