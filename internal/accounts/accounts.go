package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/observability"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Registration is the sign-up form. Every field is required.
type Registration struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
}

// ProfileUpdate changes the fields that are set. Role changes are for
// administrators.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type Service struct {
	persons    booking.PersonRepository
	bcryptCost int
	now        func() time.Time
	logger     observability.Logger
}

func NewService(persons booking.PersonRepository, bcryptCost int, logger observability.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{persons: persons, bcryptCost: bcryptCost, now: time.Now, logger: logger}
}

// WithClock replaces the clock used to classify persons.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a CLIENT account. A taken email yields domain.ErrConflict.
func (s *Service) Register(ctx context.Context, reg Registration) (*domain.Person, error) {
	name := strings.TrimSpace(reg.Name)
	email := normalizeEmail(reg.Email)
	phone := strings.TrimSpace(reg.Phone)
	if name == "" || email == "" || phone == "" || reg.Password == "" || strings.TrimSpace(reg.BirthDate) == "" {
		return nil, errors.Wrap(domain.ErrInvalidInput, "all registration fields are required")
	}
	birth, err := domain.ParseVisitDate(strings.TrimSpace(reg.BirthDate))
	if err != nil {
		return nil, errors.Wrap(err, "birth date")
	}

	hash, err := hashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	p := domain.NewPerson(domain.PersonParams{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		BirthDate:    &birth,
		Role:         domain.RoleClient,
	}, s.now())

	id, err := s.persons.Save(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "save person")
	}
	p.ID = id

	s.logger.WithFields(map[string]interface{}{
		"person_id": id.String(),
		"tier":      string(p.Tier()),
	}).Info("person registered")
	return p, nil
}

// Login returns the person matching email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Person, error) {
	p, err := s.persons.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !verifyPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	return s.persons.FindByID(ctx, id)
}

// UpdateProfile applies upd and stores the person with a recomputed tier.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*domain.Person, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, errors.Wrap(domain.ErrInvalidInput, "name cannot be empty")
		}
		p.Name = name
	}
	if upd.Phone != nil {
		p.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, errors.Wrap(domain.ErrInvalidInput, "password cannot be empty")
		}
		hash, err := hashPassword(*upd.Password, s.bcryptCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		p.PasswordHash = hash
	}
	if upd.BirthDate != nil {
		birth, err := domain.ParseVisitDate(strings.TrimSpace(*upd.BirthDate))
		if err != nil {
			return nil, errors.Wrap(err, "birth date")
		}
		p.SetBirthDate(&birth, now)
	}
	if upd.Role != nil {
		role, err := domain.ParseRole(strings.ToUpper(strings.TrimSpace(*upd.Role)))
		if err != nil {
			return nil, err
		}
		p.SetRole(role, now)
	}

	if err := s.persons.Update(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update person %s", id)
	}
	return p, nil
}

func (s *Service) ListClients(ctx context.Context) ([]*domain.Person, error) {
	return s.persons.ListClients(ctx)
}
