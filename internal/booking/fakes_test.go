package booking_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/payment"
)

var _ booking.ReservationRepository = (*fakeReservations)(nil)
var _ booking.PopularityCache = (*fakePopularityCache)(nil)

// fakeReservations keeps reservations in memory. Set the *Err fields to
// inject failures.
type fakeReservations struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*domain.Reservation
	order []uuid.UUID

	CreateCalls       []*domain.Reservation
	CreateGuestCalls  []*domain.Reservation
	UpdateStatusCalls []*domain.Reservation
	CountCalls        int

	CreateErr       error
	UpdateStatusErr error
	CountErr        error

	Counts []domain.AttractionPopularity
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{rows: make(map[uuid.UUID]*domain.Reservation)}
}

func (f *fakeReservations) store(r *domain.Reservation) uuid.UUID {
	id := uuid.New()
	r.ID = id
	f.rows[id] = r
	f.order = append(f.order, id)
	return id
}

// seed adds r as if it had been stored earlier.
func (f *fakeReservations) seed(r *domain.Reservation) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store(r)
}

func (f *fakeReservations) Create(_ context.Context, r *domain.Reservation) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, r)
	if f.CreateErr != nil {
		return uuid.Nil, f.CreateErr
	}
	return f.store(r), nil
}

func (f *fakeReservations) CreateGuest(_ context.Context, r *domain.Reservation) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateGuestCalls = append(f.CreateGuestCalls, r)
	if f.CreateErr != nil {
		return uuid.Nil, f.CreateErr
	}
	return f.store(r), nil
}

func (f *fakeReservations) FindByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeReservations) FindByPerson(_ context.Context, personID uuid.UUID) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Reservation
	for _, id := range f.order {
		r := f.rows[id]
		if p, ok := r.Holder().Person(); ok && p.ID == personID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservations) FindByGuestEmail(_ context.Context, email string) ([]domain.ReservationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReservationSummary
	for _, id := range f.order {
		r := f.rows[id]
		if g, ok := r.Holder().Guest(); ok && g.Email == email {
			out = append(out, r.Summary())
		}
	}
	return out, nil
}

func (f *fakeReservations) FindAll(_ context.Context) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Reservation, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.rows[id])
	}
	return out, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateStatusCalls = append(f.UpdateStatusCalls, r)
	return f.UpdateStatusErr
}

func (f *fakeReservations) CountByAttraction(_ context.Context) ([]domain.AttractionPopularity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountCalls++
	if f.CountErr != nil {
		return nil, f.CountErr
	}
	out := make([]domain.AttractionPopularity, len(f.Counts))
	copy(out, f.Counts)
	return out, nil
}

func (f *fakeReservations) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePopularityCache struct {
	stats []domain.AttractionPopularity
	ttl   time.Duration
	hit   bool

	GetErr error
}

func (c *fakePopularityCache) GetPopularity(context.Context) ([]domain.AttractionPopularity, bool, error) {
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	return c.stats, c.hit, nil
}

func (c *fakePopularityCache) SetPopularity(_ context.Context, stats []domain.AttractionPopularity, ttl time.Duration) error {
	c.stats = stats
	c.ttl = ttl
	c.hit = true
	return nil
}

// blockingSource waits for ctx to end, like a visitor who never answers.
type blockingSource struct{}

func (blockingSource) Collect(ctx context.Context, _ payment.Quote) (payment.RawInput, error) {
	<-ctx.Done()
	return payment.RawInput{}, ctx.Err()
}

// recordingSource remembers the quote it was shown.
type recordingSource struct {
	in    payment.RawInput
	quote payment.Quote
}

func (s *recordingSource) Collect(_ context.Context, q payment.Quote) (payment.RawInput, error) {
	s.quote = q
	return s.in, nil
}
