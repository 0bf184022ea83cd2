package domain

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// VisitDateLayout is the accepted format for reservation dates.
const VisitDateLayout = "2006-01-02"

func ParseVisitDate(s string) (time.Time, error) {
	d, err := time.Parse(VisitDateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidInput, "visit date %q", s)
	}
	return d, nil
}

// Holder is who a reservation belongs to: a registered person or a guest,
// never both.
type Holder struct {
	person *PersonRef
	guest  *Guest
}

func PersonHolder(ref PersonRef) Holder {
	return Holder{person: &ref}
}

func GuestHolder(g Guest) Holder {
	return Holder{guest: &g}
}

func (h Holder) Person() (PersonRef, bool) {
	if h.person == nil {
		return PersonRef{}, false
	}
	return *h.person, true
}

func (h Holder) Guest() (Guest, bool) {
	if h.guest == nil {
		return Guest{}, false
	}
	return *h.guest, true
}

func (h Holder) IsGuest() bool {
	return h.guest != nil
}

func (h Holder) valid() bool {
	return (h.person == nil) != (h.guest == nil)
}

// Reservation is a visit booked for one attraction on one date.
//
// The holder and attraction are fixed at construction. Status changes go
// through Confirm, Cancel and Transition:
//
//	PENDING   -> CONFIRMED  (payment attached and not rejected)
//	PENDING   -> CANCELLED
//	CONFIRMED -> CANCELLED
//
// Nothing returns a reservation to PENDING.
type Reservation struct {
	ID      uuid.UUID
	Date    time.Time
	Payment *Payment

	holder     Holder
	attraction AttractionRef
	status     ReservationStatus
}

// NewReservation stages a reservation in PENDING. Staged reservations are
// not persisted until Confirm succeeds.
func NewReservation(h Holder, a AttractionRef, date time.Time) (*Reservation, error) {
	if !h.valid() {
		return nil, errors.Wrap(ErrInvalidInput, "reservation needs exactly one holder")
	}
	return &Reservation{
		Date:       date,
		holder:     h,
		attraction: a,
		status:     ReservationPending,
	}, nil
}

// RestoreReservation rebuilds a stored reservation and checks that a
// confirmed row carries an accepted payment.
func RestoreReservation(id uuid.UUID, h Holder, a AttractionRef, date time.Time, status ReservationStatus, p *Payment) (*Reservation, error) {
	if !h.valid() {
		return nil, errors.Wrapf(ErrInvalidInput, "reservation %s has no single holder", id)
	}
	if _, err := ParseReservationStatus(string(status)); err != nil {
		return nil, err
	}
	if status == ReservationConfirmed && (p == nil || !p.Accepted()) {
		return nil, errors.Wrapf(ErrInvalidInput, "reservation %s is confirmed without an accepted payment", id)
	}
	return &Reservation{
		ID:         id,
		Date:       date,
		Payment:    p,
		holder:     h,
		attraction: a,
		status:     status,
	}, nil
}

func (r *Reservation) Holder() Holder { return r.holder }
func (r *Reservation) Attraction() AttractionRef { return r.attraction }
func (r *Reservation) Status() ReservationStatus { return r.status }

func (r *Reservation) Confirm(p Payment) error {
	if r.status != ReservationPending {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", r.status, ReservationConfirmed)
	}
	if !p.Accepted() {
		return ErrPaymentRejected
	}
	r.Payment = &p
	r.status = ReservationConfirmed
	return nil
}

func (r *Reservation) Cancel() error {
	if r.status == ReservationCancelled {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", r.status, ReservationCancelled)
	}
	r.status = ReservationCancelled
	return nil
}

// Transition applies an administrative status change.
func (r *Reservation) Transition(target ReservationStatus) error {
	switch target {
	case ReservationCancelled:
		return r.Cancel()
	case ReservationConfirmed:
		if r.Payment == nil {
			return errors.Wrap(ErrInvalidTransition, "cannot confirm without a payment")
		}
		return r.Confirm(*r.Payment)
	default:
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", r.status, target)
	}
}

// ReservationSummary is a history row: what was booked, when, and where it
// stands.
type ReservationSummary struct {
	ID         uuid.UUID         `json:"id"`
	Attraction AttractionRef     `json:"attraction"`
	Date       time.Time         `json:"date"`
	Status     ReservationStatus `json:"status"`
}

func (r *Reservation) Summary() ReservationSummary {
	return ReservationSummary{
		ID:         r.ID,
		Attraction: r.attraction,
		Date:       r.Date,
		Status:     r.status,
	}
}
