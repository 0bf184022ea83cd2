package http

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
)

var (
	_ booking.PersonRepository      = (*memStore)(nil)
	_ booking.AttractionRepository  = (*memAttractions)(nil)
	_ booking.ReservationRepository = (*memReservations)(nil)
)

// memStore keeps persons in memory. Attractions and reservations hang off
// it so one fixture backs every service.
type memStore struct {
	mu           sync.Mutex
	persons      map[uuid.UUID]*domain.Person
	attractions  map[uuid.UUID]domain.Attraction
	reservations []*domain.Reservation
}

func newMemStore() *memStore {
	return &memStore{
		persons:     make(map[uuid.UUID]*domain.Person),
		attractions: make(map[uuid.UUID]domain.Attraction),
	}
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*domain.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.persons {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, p *domain.Person) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.persons {
		if existing.Email == p.Email {
			return uuid.Nil, domain.ErrConflict
		}
	}
	cp := *p
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.persons[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memStore) Update(_ context.Context, p *domain.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.persons[p.ID] = &cp
	return nil
}

func (m *memStore) ListClients(context.Context) ([]*domain.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Person
	for _, p := range m.persons {
		if p.Role() == domain.RoleClient {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAttractions struct{ *memStore }

func (m memAttractions) FindAll(context.Context) ([]domain.Attraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Attraction, 0, len(m.attractions))
	for _, a := range m.attractions {
		out = append(out, a)
	}
	return out, nil
}

func (m memAttractions) FindActive(ctx context.Context) ([]domain.Attraction, error) {
	all, _ := m.FindAll(ctx)
	var out []domain.Attraction
	for _, a := range all {
		if a.Bookable() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memAttractions) FindByID(_ context.Context, id uuid.UUID) (*domain.Attraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attractions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m memAttractions) Save(_ context.Context, a domain.Attraction) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.attractions[a.ID] = a
	return a.ID, nil
}

func (m memAttractions) Update(_ context.Context, a domain.Attraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attractions[a.ID]; !ok {
		return domain.ErrNotFound
	}
	m.attractions[a.ID] = a
	return nil
}

func (m memAttractions) DeleteByID(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attractions[id]; !ok {
		return domain.ErrNotFound
	}
	for _, r := range m.reservations {
		if r.Attraction().ID == id {
			return domain.ErrConflict
		}
	}
	delete(m.attractions, id)
	return nil
}

type memReservations struct{ *memStore }

func (m memReservations) store(r *domain.Reservation) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.ID = uuid.New()
	m.reservations = append(m.reservations, &cp)
	return cp.ID
}

func (m memReservations) Create(_ context.Context, r *domain.Reservation) (uuid.UUID, error) {
	return m.store(r), nil
}

func (m memReservations) CreateGuest(_ context.Context, r *domain.Reservation) (uuid.UUID, error) {
	return m.store(r), nil
}

func (m memReservations) FindByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memReservations) FindByPerson(_ context.Context, personID uuid.UUID) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Reservation
	for _, r := range m.reservations {
		if p, ok := r.Holder().Person(); ok && p.ID == personID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReservations) FindByGuestEmail(_ context.Context, email string) ([]domain.ReservationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReservationSummary
	for _, r := range m.reservations {
		if g, ok := r.Holder().Guest(); ok && g.Email == email {
			out = append(out, r.Summary())
		}
	}
	return out, nil
}

func (m memReservations) FindAll(context.Context) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Reservation(nil), m.reservations...), nil
}

func (m memReservations) UpdateStatus(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.reservations {
		if existing.ID == r.ID {
			cp := *r
			m.reservations[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m memReservations) CountByAttraction(context.Context) ([]domain.AttractionPopularity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.AttractionRef]int{}
	for _, r := range m.reservations {
		if r.Status() != domain.ReservationCancelled {
			counts[r.Attraction()]++
		}
	}
	var out []domain.AttractionPopularity
	for ref, n := range counts {
		out = append(out, domain.AttractionPopularity{Attraction: ref, Reservations: n})
	}
	return out, nil
}
