package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/observability"
)

const maxRetries = 3

// Refresher recomputes the popularity ranking and caches it.
type Refresher interface {
	RefreshPopularity(ctx context.Context) ([]domain.AttractionPopularity, error)
}

type StatsWorker struct {
	refresher Refresher
	logger    observability.Logger
	backoff   time.Duration
}

func NewStatsWorker(refresher Refresher, logger observability.Logger) *StatsWorker {
	return &StatsWorker{refresher: refresher, logger: logger, backoff: time.Second}
}

// Run refreshes once immediately and then every interval until ctx ends.
func (w *StatsWorker) Run(ctx context.Context, interval time.Duration) {
	w.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StatsWorker) tick(ctx context.Context) {
	stats, err := w.refreshWithRetry(ctx)
	if err != nil {
		if ctx.Err() == nil {
			observability.StatsRefreshTotal.WithLabelValues("error").Inc()
			w.logger.WithError(err).Error("failed to refresh attraction stats after retries")
		}
		return
	}
	observability.StatsRefreshTotal.WithLabelValues("ok").Inc()
	w.logger.WithField("attractions", len(stats)).Debug("attraction stats refreshed")
}

// refreshWithRetry backs off exponentially between attempts: backoff, then
// twice that, and so on.
func (w *StatsWorker) refreshWithRetry(ctx context.Context) ([]domain.AttractionPopularity, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		stats, err := w.refresher.RefreshPopularity(ctx)
		if err == nil {
			return stats, nil
		}
		lastErr = err
		w.logger.WithError(err).WithField("attempt", i+1).Warn("attraction stats refresh failed")
		if i == maxRetries-1 {
			break
		}

		backoff := time.Duration(1<<i) * w.backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, errors.Wrapf(lastErr, "failed after %d retries", maxRetries)
}
