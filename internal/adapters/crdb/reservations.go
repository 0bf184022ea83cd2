package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/outbox"
)

// Reservations stores reservations with their payment. A stored
// reservation, its payment and its outbox event are written in one
// transaction.
type Reservations struct {
	db *Repository
}

const reservationSelect = `
	SELECT r.id, r.person_id, COALESCE(p.name, ''), r.guest_name, r.guest_email,
		r.attraction_id, a.name, r.visit_date, r.status,
		pay.amount::STRING, pay.paid_at, pay.method, pay.status, pay.payer_id
	FROM reservations r
	JOIN attractions a ON a.id = r.attraction_id
	LEFT JOIN persons p ON p.id = r.person_id
	LEFT JOIN payments pay ON pay.reservation_id = r.id
`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		id         uuid.UUID
		personID   *uuid.UUID
		personName string
		guestName  *string
		guestEmail *string
		attraction domain.AttractionRef
		date       time.Time
		status     string
		amount     *string
		paidAt     *time.Time
		method     *string
		payStatus  *string
		payerID    *uuid.UUID
	)
	err := row.Scan(&id, &personID, &personName, &guestName, &guestEmail,
		&attraction.ID, &attraction.Name, &date, &status,
		&amount, &paidAt, &method, &payStatus, &payerID)
	if err != nil {
		return nil, err
	}

	var holder domain.Holder
	if personID != nil {
		holder = domain.PersonHolder(domain.PersonRef{ID: *personID, Name: personName})
	} else if guestEmail != nil {
		g := domain.Guest{Email: *guestEmail}
		if guestName != nil {
			g.Name = *guestName
		}
		holder = domain.GuestHolder(g)
	}

	var p *domain.Payment
	if amount != nil {
		p = &domain.Payment{PayerID: payerID}
		if p.Amount, err = decimal.NewFromString(*amount); err != nil {
			return nil, errors.Wrapf(err, "reservation %s amount", id)
		}
		if paidAt != nil {
			p.PaidAt = *paidAt
		}
		if p.Method, err = domain.ParsePaymentMethod(deref(method)); err != nil {
			return nil, err
		}
		if p.Status, err = domain.ParsePaymentStatus(deref(payStatus)); err != nil {
			return nil, err
		}
	}

	return domain.RestoreReservation(id, holder, attraction, date, domain.ReservationStatus(status), p)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Reservations) query(ctx context.Context, tail string, args ...interface{}) ([]*domain.Reservation, error) {
	rows, err := s.db.pool.Query(ctx, reservationSelect+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create stores a confirmed reservation held by a registered person.
func (s *Reservations) Create(ctx context.Context, r *domain.Reservation) (uuid.UUID, error) {
	ref, ok := r.Holder().Person()
	if !ok {
		return uuid.Nil, errors.Wrap(domain.ErrInvalidInput, "reservation is not held by a person")
	}
	return s.insert(ctx, r, &ref.ID, nil, nil)
}

// CreateGuest stores a confirmed reservation held by a guest.
func (s *Reservations) CreateGuest(ctx context.Context, r *domain.Reservation) (uuid.UUID, error) {
	g, ok := r.Holder().Guest()
	if !ok {
		return uuid.Nil, errors.Wrap(domain.ErrInvalidInput, "reservation is not held by a guest")
	}
	return s.insert(ctx, r, nil, &g.Name, &g.Email)
}

func (s *Reservations) insert(ctx context.Context, r *domain.Reservation, personID *uuid.UUID, guestName, guestEmail *string) (uuid.UUID, error) {
	if r.Status() != domain.ReservationConfirmed || r.Payment == nil {
		return uuid.Nil, errors.Wrapf(domain.ErrInvalidInput, "only confirmed reservations are stored, got %s", r.Status())
	}

	id := uuid.New()
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations (id, person_id, guest_name, guest_email, attraction_id, visit_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, personID, guestName, guestEmail, r.Attraction().ID, r.Date, string(r.Status()))
		if err != nil {
			return err
		}

		p := r.Payment
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, reservation_id, payer_id, amount, paid_at, method, status)
			VALUES ($1, $2, $3, $4::STRING::DECIMAL, $5, $6, $7)
		`, uuid.New(), id, p.PayerID, p.Amount.String(), p.PaidAt, string(p.Method), string(p.Status))
		if err != nil {
			return err
		}

		staged := *r
		staged.ID = id
		rec, err := outbox.NewBookingConfirmed(&staged, s.db.now())
		if err != nil {
			return err
		}
		return s.db.InsertOutbox(ctx, tx, rec)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *Reservations) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, err := scanReservation(s.db.pool.QueryRow(ctx, reservationSelect+`WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return r, err
}

func (s *Reservations) FindByPerson(ctx context.Context, personID uuid.UUID) ([]*domain.Reservation, error) {
	return s.query(ctx, `WHERE r.person_id = $1 ORDER BY r.created_at, r.id`, personID)
}

func (s *Reservations) FindByGuestEmail(ctx context.Context, email string) ([]domain.ReservationSummary, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT r.id, r.attraction_id, a.name, r.visit_date, r.status
		FROM reservations r
		JOIN attractions a ON a.id = r.attraction_id
		WHERE r.guest_email = $1
		ORDER BY r.created_at, r.id
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReservationSummary
	for rows.Next() {
		var (
			sum    domain.ReservationSummary
			status string
		)
		if err := rows.Scan(&sum.ID, &sum.Attraction.ID, &sum.Attraction.Name, &sum.Date, &status); err != nil {
			return nil, err
		}
		if sum.Status, err = domain.ParseReservationStatus(status); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Reservations) FindAll(ctx context.Context) ([]*domain.Reservation, error) {
	return s.query(ctx, `ORDER BY r.created_at, r.id`)
}

// UpdateStatus writes r's status. A cancellation also queues a
// reservation.cancelled event.
func (s *Reservations) UpdateStatus(ctx context.Context, r *domain.Reservation) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, r.ID, string(r.Status()))
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if r.Status() != domain.ReservationCancelled {
			return nil
		}
		rec, err := outbox.NewReservationCancelled(r, s.db.now())
		if err != nil {
			return err
		}
		return s.db.InsertOutbox(ctx, tx, rec)
	})
}

// CountByAttraction counts PENDING and CONFIRMED reservations per attraction.
func (s *Reservations) CountByAttraction(ctx context.Context) ([]domain.AttractionPopularity, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT a.id, a.name, count(r.id)
		FROM reservations r
		JOIN attractions a ON a.id = r.attraction_id
		WHERE r.status IN ('CONFIRMED', 'PENDING')
		GROUP BY a.id, a.name
		ORDER BY count(r.id) DESC, a.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttractionPopularity
	for rows.Next() {
		var (
			stat  domain.AttractionPopularity
			count int64
		)
		if err := rows.Scan(&stat.Attraction.ID, &stat.Attraction.Name, &count); err != nil {
			return nil, err
		}
		stat.Reservations = int(count)
		out = append(out, stat)
	}
	return out, rows.Err()
}
