package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/robertarktes/park-bookings/internal/domain"
)

type PersonRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Person, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	Save(ctx context.Context, p *domain.Person) (uuid.UUID, error)
	Update(ctx context.Context, p *domain.Person) error
	ListClients(ctx context.Context) ([]*domain.Person, error)
}

type AttractionRepository interface {
	FindAll(ctx context.Context) ([]domain.Attraction, error)
	FindActive(ctx context.Context) ([]domain.Attraction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Attraction, error)
	Save(ctx context.Context, a domain.Attraction) (uuid.UUID, error)
	Update(ctx context.Context, a domain.Attraction) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// ReservationRepository stores confirmed reservations together with their
// payment. Create and CreateGuest assign the reservation ID.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (uuid.UUID, error)
	CreateGuest(ctx context.Context, r *domain.Reservation) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	FindByPerson(ctx context.Context, personID uuid.UUID) ([]*domain.Reservation, error)
	FindByGuestEmail(ctx context.Context, email string) ([]domain.ReservationSummary, error)
	FindAll(ctx context.Context) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, r *domain.Reservation) error
	CountByAttraction(ctx context.Context) ([]domain.AttractionPopularity, error)
}
