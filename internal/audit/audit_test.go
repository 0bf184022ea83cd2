package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertarktes/park-bookings/internal/audit"
	"github.com/robertarktes/park-bookings/internal/observability"
)

var _ audit.Recorder = (*fakeRecorder)(nil)
var _ amqp.Acknowledger = (*fakeAck)(nil)

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (r *fakeRecorder) LogEvent(_ context.Context, e audit.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

type fakeAck struct {
	acked    int
	nacked   int
	requeued int
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func run(t *testing.T, rec *fakeRecorder, ds ...amqp.Delivery) {
	t.Helper()
	ch := make(chan amqp.Delivery, len(ds))
	for _, d := range ds {
		ch <- d
	}
	close(ch)
	audit.NewConsumer(rec, observability.NewDiscardLogger()).Run(context.Background(), ch)
}

func TestConsumer(t *testing.T) {
	ack := &fakeAck{}
	rec := &fakeRecorder{}
	at := time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)

	run(t, rec,
		amqp.Delivery{
			Acknowledger: ack,
			MessageId:    "booking.confirmed:r1",
			RoutingKey:   "booking.confirmed",
			Timestamp:    at,
			Body:         []byte(`{"reservation_id":"r1","amount":"17.00"}`),
		},
		amqp.Delivery{Acknowledger: ack, MessageId: "bad", RoutingKey: "booking.confirmed", Body: []byte(`not json`)},
		amqp.Delivery{Acknowledger: ack, RoutingKey: "booking.confirmed", Body: []byte(`{}`)},
	)

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, "booking.confirmed:r1", e.ID)
	assert.Equal(t, "booking.confirmed", e.Action)
	assert.Equal(t, "r1", e.AggregateID)
	assert.Equal(t, at, e.Timestamp)
	assert.Equal(t, "17.00", e.Data["amount"])

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 2, ack.nacked)
	assert.Zero(t, ack.requeued)
}

func TestConsumer_StoreDown(t *testing.T) {
	ack := &fakeAck{}
	rec := &fakeRecorder{err: errors.New("mongo unavailable")}

	run(t, rec, amqp.Delivery{
		Acknowledger: ack,
		MessageId:    "reservation.cancelled:r1",
		RoutingKey:   "reservation.cancelled",
		Body:         []byte(`{"reservation_id":"r1"}`),
	})

	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.requeued)
}
