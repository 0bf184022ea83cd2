package booking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/observability"
	"github.com/robertarktes/park-bookings/internal/payment"
)

const (
	tracerName = "booking"

	pathPerson = "person"
	pathGuest  = "guest"
)

// PopularityCache holds the last computed popularity ranking.
type PopularityCache interface {
	GetPopularity(ctx context.Context) ([]domain.AttractionPopularity, bool, error)
	SetPopularity(ctx context.Context, stats []domain.AttractionPopularity, ttl time.Duration) error
}

// Service runs the booking protocol: price, collect and validate payment,
// then store the confirmed reservation. One call runs to completion before
// it returns; nothing is retried.
type Service struct {
	reservations ReservationRepository
	validator    *payment.Validator
	logger       observability.Logger
	inputTimeout time.Duration
	stats        PopularityCache
	statsTTL     time.Duration
}

type Option func(*Service)

// WithInputTimeout bounds how long Collect may block. Zero means no limit.
func WithInputTimeout(d time.Duration) Option {
	return func(s *Service) { s.inputTimeout = d }
}

func WithValidator(v *payment.Validator) Option {
	return func(s *Service) { s.validator = v }
}

func WithPopularityCache(c PopularityCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.stats = c
		s.statsTTL = ttl
	}
}

func NewService(reservations ReservationRepository, logger observability.Logger, opts ...Option) *Service {
	s := &Service{
		reservations: reservations,
		validator:    payment.NewValidator(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookForPerson books attraction on date for a registered person.
func (s *Service) BookForPerson(ctx context.Context, person *domain.Person, attraction domain.Attraction, date string, src payment.InputSource) (*domain.Reservation, error) {
	return s.book(ctx, pathPerson, attraction, date, src, func() (domain.Holder, *domain.Person, error) {
		if person == nil {
			return domain.Holder{}, nil, domainError(CodeMissingPerson, nil)
		}
		return domain.PersonHolder(person.Ref()), person, nil
	})
}

// BookForGuest books attraction on date for a visitor without an account.
// Guests pay the base price.
func (s *Service) BookForGuest(ctx context.Context, guest domain.Guest, attraction domain.Attraction, date string, src payment.InputSource) (*domain.Reservation, error) {
	return s.book(ctx, pathGuest, attraction, date, src, func() (domain.Holder, *domain.Person, error) {
		if !guest.Complete() {
			return domain.Holder{}, nil, domainError(CodeMissingGuestInfo, nil)
		}
		return domain.GuestHolder(guest), nil, nil
	})
}

type identifyFunc func() (domain.Holder, *domain.Person, error)

func (s *Service) book(ctx context.Context, path string, a domain.Attraction, date string, src payment.InputSource, identify identifyFunc) (*domain.Reservation, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "booking."+path,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("attraction.id", a.ID.String()),
			attribute.String("booking.path", path),
		),
	)
	defer span.End()

	logger := s.logger.WithFields(map[string]interface{}{
		"path":          path,
		"attraction_id": a.ID.String(),
	})

	r, err := s.attempt(ctx, logger, a, date, src, identify)

	outcome := "CONFIRMED"
	if err != nil {
		outcome = "UNEXPECTED"
		var berr *Error
		if errors.As(err, &berr) {
			outcome = string(berr.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(attribute.String("reservation.id", r.ID.String()))
	}
	observability.BookingsTotal.WithLabelValues(path, outcome).Inc()

	return r, err
}

func (s *Service) attempt(ctx context.Context, logger observability.Logger, a domain.Attraction, date string, src payment.InputSource, identify identifyFunc) (*domain.Reservation, error) {
	if !a.Bookable() {
		return nil, domainError(CodeAttractionUnavailable, nil)
	}
	visitDate, err := domain.ParseVisitDate(date)
	if err != nil {
		return nil, domainError(CodeInvalidDate, err)
	}
	holder, payer, err := identify()
	if err != nil {
		return nil, err
	}

	amount := domain.Price(a, payer)

	raw, err := s.collect(ctx, payment.Quote{Attraction: a.Name, Amount: amount}, src)
	if err != nil {
		return nil, err
	}

	var payerID *uuid.UUID
	if payer != nil {
		id := payer.ID
		payerID = &id
	}
	p, err := s.validator.Validate(raw, amount, payerID)
	if err != nil {
		var verr *payment.ValidationError
		if errors.As(err, &verr) {
			observability.PaymentValidationFailures.WithLabelValues(string(verr.Code)).Inc()
			return nil, validationError(verr)
		}
		return nil, errors.Wrap(err, "validate payment")
	}

	r, err := domain.NewReservation(holder, a.Ref(), visitDate)
	if err != nil {
		return nil, errors.Wrap(err, "stage reservation")
	}
	if err := r.Confirm(p); err != nil {
		return nil, errors.Wrap(err, "confirm reservation")
	}

	var id uuid.UUID
	if holder.IsGuest() {
		id, err = s.reservations.CreateGuest(ctx, r)
	} else {
		id, err = s.reservations.Create(ctx, r)
	}
	if err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"amount":         p.Amount.String(),
			"payment_method": string(p.Method),
			"payment_status": string(p.Status),
			"visit_date":     date,
		}).Error("payment accepted but reservation was not stored")
		return nil, persistenceError(err)
	}
	r.ID = id

	logger.WithFields(map[string]interface{}{
		"reservation_id": id.String(),
		"amount":         p.Amount.String(),
		"payment_method": string(p.Method),
	}).Info("reservation confirmed")
	return r, nil
}

func (s *Service) collect(ctx context.Context, q payment.Quote, src payment.InputSource) (payment.RawInput, error) {
	if s.inputTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.inputTimeout)
		defer cancel()
	}

	raw, err := src.Collect(ctx, q)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, payment.ErrInputCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return payment.RawInput{}, cancelledError(err)
	default:
		return payment.RawInput{}, errors.Wrap(err, "collect payment input")
	}
}

// HistoryForPerson lists a person's reservations in storage order.
func (s *Service) HistoryForPerson(ctx context.Context, personID uuid.UUID) ([]*domain.Reservation, error) {
	return s.reservations.FindByPerson(ctx, personID)
}

// HistoryForGuest lists the reservations booked under a guest email.
func (s *Service) HistoryForGuest(ctx context.Context, email string) ([]domain.ReservationSummary, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.Wrap(domain.ErrInvalidInput, "guest email is required")
	}
	return s.reservations.FindByGuestEmail(ctx, email)
}

func (s *Service) AllReservations(ctx context.Context) ([]*domain.Reservation, error) {
	return s.reservations.FindAll(ctx)
}

// ChangeStatus applies an administrative status change to a stored
// reservation.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, target domain.ReservationStatus) (*domain.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status()
	if err := r.Transition(target); err != nil {
		return nil, err
	}
	if err := s.reservations.UpdateStatus(ctx, r); err != nil {
		return nil, errors.Wrapf(err, "update reservation %s", id)
	}

	s.logger.WithFields(map[string]interface{}{
		"reservation_id": id.String(),
		"from":           string(from),
		"to":             string(r.Status()),
	}).Info("reservation status changed")
	return r, nil
}

// Popularity returns reservations per attraction, most booked first. A
// cached ranking is used when one is available.
func (s *Service) Popularity(ctx context.Context) ([]domain.AttractionPopularity, error) {
	if s.stats != nil {
		cached, ok, err := s.stats.GetPopularity(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("popularity cache read failed")
		} else if ok {
			return cached, nil
		}
	}
	return s.RefreshPopularity(ctx)
}

// RefreshPopularity recomputes the ranking from storage and caches it.
func (s *Service) RefreshPopularity(ctx context.Context) ([]domain.AttractionPopularity, error) {
	stats, err := s.reservations.CountByAttraction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count reservations by attraction")
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Reservations != stats[j].Reservations {
			return stats[i].Reservations > stats[j].Reservations
		}
		return stats[i].Attraction.Name < stats[j].Attraction.Name
	})

	if s.stats != nil {
		if err := s.stats.SetPopularity(ctx, stats, s.statsTTL); err != nil {
			s.logger.WithError(err).Warn("popularity cache write failed")
		}
	}
	return stats, nil
}
