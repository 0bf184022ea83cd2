package outbox

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/robertarktes/park-bookings/internal/domain"
)

const (
	AggregateReservation = "reservation"

	EventBookingConfirmed     = "booking.confirmed"
	EventReservationCancelled = "reservation.cancelled"

	StatusNew       = "NEW"
	StatusPublished = "PUBLISHED"
)

// Record is one event waiting in the outbox table.
type Record struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Status        string
	DedupeKey     string
}

type BookingConfirmed struct {
	ReservationID  uuid.UUID  `json:"reservation_id"`
	AttractionID   uuid.UUID  `json:"attraction_id"`
	AttractionName string     `json:"attraction_name"`
	VisitDate      string     `json:"visit_date"`
	PersonID       *uuid.UUID `json:"person_id,omitempty"`
	GuestEmail     string     `json:"guest_email,omitempty"`
	Amount         string     `json:"amount"`
	Method         string     `json:"method"`
	PaymentStatus  string     `json:"payment_status"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

type ReservationCancelled struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	AttractionID  uuid.UUID `json:"attraction_id"`
	VisitDate     string    `json:"visit_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewBookingConfirmed builds the record announcing a stored, confirmed
// reservation. r.ID must already be assigned.
func NewBookingConfirmed(r *domain.Reservation, at time.Time) (Record, error) {
	if r.Payment == nil {
		return Record{}, errors.Newf("reservation %s has no payment", r.ID)
	}
	evt := BookingConfirmed{
		ReservationID:  r.ID,
		AttractionID:   r.Attraction().ID,
		AttractionName: r.Attraction().Name,
		VisitDate:      r.Date.Format(domain.VisitDateLayout),
		Amount:         r.Payment.Amount.StringFixed(2),
		Method:         string(r.Payment.Method),
		PaymentStatus:  string(r.Payment.Status),
		OccurredAt:     at,
	}
	if p, ok := r.Holder().Person(); ok {
		id := p.ID
		evt.PersonID = &id
	}
	if g, ok := r.Holder().Guest(); ok {
		evt.GuestEmail = g.Email
	}
	return newRecord(r.ID, EventBookingConfirmed, evt, at)
}

func NewReservationCancelled(r *domain.Reservation, at time.Time) (Record, error) {
	evt := ReservationCancelled{
		ReservationID: r.ID,
		AttractionID:  r.Attraction().ID,
		VisitDate:     r.Date.Format(domain.VisitDateLayout),
		OccurredAt:    at,
	}
	return newRecord(r.ID, EventReservationCancelled, evt, at)
}

func newRecord(aggregateID uuid.UUID, eventType string, evt interface{}, at time.Time) (Record, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Record{}, errors.Wrapf(err, "marshal %s", eventType)
	}
	return Record{
		ID:            uuid.New(),
		AggregateType: AggregateReservation,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
		Status:        StatusNew,
		DedupeKey:     eventType + ":" + aggregateID.String(),
	}, nil
}
