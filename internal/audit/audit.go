package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/robertarktes/park-bookings/internal/observability"
)

// Entry is one audited domain event.
type Entry struct {
	ID          string
	Action      string
	AggregateID string
	Timestamp   time.Time
	Data        map[string]interface{}
}

type Recorder interface {
	LogEvent(ctx context.Context, e Entry) error
}

var errMalformed = errors.New("malformed event")

// Consumer writes every event delivered from the broker into the audit log.
type Consumer struct {
	recorder Recorder
	logger   observability.Logger
	now      func() time.Time
}

func NewConsumer(recorder Recorder, logger observability.Logger) *Consumer {
	return &Consumer{recorder: recorder, logger: logger, now: time.Now}
}

// Run handles deliveries until the channel closes or ctx ends. Malformed
// messages are dropped; storage failures are requeued.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	logger := c.logger.WithFields(map[string]interface{}{
		"message_id":  d.MessageId,
		"routing_key": d.RoutingKey,
	})

	entry, err := c.entry(d)
	if err != nil {
		logger.WithError(err).Warn("dropping audit message")
		_ = d.Nack(false, false)
		return
	}
	if err := c.recorder.LogEvent(ctx, entry); err != nil {
		logger.WithError(err).Error("audit write failed, requeueing")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) entry(d amqp.Delivery) (Entry, error) {
	if d.MessageId == "" {
		return Entry{}, errors.Wrap(errMalformed, "missing message id")
	}
	var data map[string]interface{}
	if err := json.Unmarshal(d.Body, &data); err != nil {
		return Entry{}, errors.Mark(errors.Wrap(err, "decode body"), errMalformed)
	}

	e := Entry{
		ID:        d.MessageId,
		Action:    d.RoutingKey,
		Timestamp: d.Timestamp,
		Data:      data,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.now()
	}
	if id, ok := data["reservation_id"].(string); ok {
		e.AggregateID = id
	}
	return e, nil
}
