package outbox

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/robertarktes/park-bookings/internal/observability"
)

type Store interface {
	Unpublished(ctx context.Context, limit int) ([]Record, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

// Relay moves outbox records to the broker. Records are marked published
// only after the broker accepted them, so delivery is at least once and
// consumers dedupe on MessageId.
type Relay struct {
	store    Store
	pub      Publisher
	cb       *gobreaker.CircuitBreaker
	logger   observability.Logger
	interval time.Duration
	batch    int
	now      func() time.Time
}

func NewRelay(store Store, pub Publisher, cb *gobreaker.CircuitBreaker, logger observability.Logger, interval time.Duration, batch int) *Relay {
	return &Relay{
		store:    store,
		pub:      pub,
		cb:       cb,
		logger:   logger,
		interval: interval,
		batch:    batch,
		now:      time.Now,
	}
}

func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.WithError(err).Error("outbox relay pass failed")
			}
		}
	}
}

// RunOnce publishes one batch and returns how many records went out. An
// open breaker ends the pass early.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.store.Unpublished(ctx, r.batch)
	if err != nil {
		return 0, errors.Wrap(err, "load unpublished outbox")
	}

	published := 0
	var oldest time.Time
	for _, rec := range records {
		msg := amqp.Publishing{
			MessageId:    rec.DedupeKey,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    rec.CreatedAt,
			Type:         rec.EventType,
			Body:         rec.Payload,
		}
		_, err := r.cb.Execute(func() (interface{}, error) {
			return nil, r.pub.Publish(ctx, rec.EventType, msg)
		})
		if err != nil {
			observability.OutboxPublishFailures.Inc()
			r.logger.WithError(err).WithField("outbox_id", rec.ID.String()).Warn("outbox publish failed")
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				break
			}
			continue
		}

		if err := r.store.MarkPublished(ctx, rec.ID, r.now()); err != nil {
			return published, errors.Wrapf(err, "mark outbox %s published", rec.ID)
		}
		published++
		if oldest.IsZero() || rec.CreatedAt.Before(oldest) {
			oldest = rec.CreatedAt
		}
	}

	if !oldest.IsZero() {
		observability.OutboxLag.Set(r.now().Sub(oldest).Seconds())
	}
	return published, nil
}
