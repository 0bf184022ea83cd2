package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/observability"
)

// Cache holds the list of bookable attractions shown to visitors.
type Cache interface {
	GetActive(ctx context.Context) ([]domain.Attraction, bool, error)
	SetActive(ctx context.Context, attractions []domain.Attraction, ttl time.Duration) error
	InvalidateActive(ctx context.Context) error
}

// AttractionForm is an attraction as typed into the admin form.
type AttractionForm struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Capacity    string `json:"capacity"`
	Duration    string `json:"duration"`
	Price       string `json:"price"`
	Status      string `json:"status"`
}

// Attraction parses the form. Status defaults to ACTIVE when left blank.
func (f AttractionForm) Attraction() (domain.Attraction, error) {
	capacity, err := strconv.Atoi(strings.TrimSpace(f.Capacity))
	if err != nil {
		return domain.Attraction{}, errors.Wrapf(domain.ErrInvalidInput, "capacity %q", f.Capacity)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return domain.Attraction{}, errors.Wrapf(domain.ErrInvalidInput, "price %q", f.Price)
	}
	status := domain.AttractionActive
	if s := strings.TrimSpace(f.Status); s != "" {
		status, err = domain.ParseAttractionStatus(strings.ToUpper(s))
		if err != nil {
			return domain.Attraction{}, err
		}
	}
	return domain.Attraction{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Description: f.Description,
		Capacity:    capacity,
		Duration:    strings.TrimSpace(f.Duration),
		BasePrice:   price,
		Status:      status,
	}, nil
}

type Service struct {
	repo     booking.AttractionRepository
	cache    Cache
	cacheTTL time.Duration
	logger   observability.Logger
}

// NewService wires the inventory. cache may be nil.
func NewService(repo booking.AttractionRepository, cache Cache, cacheTTL time.Duration, logger observability.Logger) *Service {
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func validate(a domain.Attraction) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Capacity <= 0 {
		return errors.Wrapf(domain.ErrInvalidInput, "capacity %d must be positive", a.Capacity)
	}
	return nil
}

func (s *Service) Add(ctx context.Context, form AttractionForm) (domain.Attraction, error) {
	a, err := form.Attraction()
	if err != nil {
		return domain.Attraction{}, err
	}
	if err := validate(a); err != nil {
		return domain.Attraction{}, err
	}
	id, err := s.repo.Save(ctx, a)
	if err != nil {
		return domain.Attraction{}, errors.Wrap(err, "save attraction")
	}
	a.ID = id
	s.invalidate(ctx)

	s.logger.WithFields(map[string]interface{}{
		"attraction_id": id.String(),
		"name":          a.Name,
	}).Info("attraction added")
	return a, nil
}

func (s *Service) Update(ctx context.Context, a domain.Attraction) error {
	if err := validate(a); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return errors.Wrapf(err, "update attraction %s", a.ID)
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes an attraction. Attractions with reservations are kept and
// ErrConflict is returned.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return errors.Wrapf(err, "delete attraction %s", id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Attraction, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Attraction, error) {
	return s.repo.FindByID(ctx, id)
}

// ListActive returns bookable attractions, from the cache when possible.
func (s *Service) ListActive(ctx context.Context) ([]domain.Attraction, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetActive(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("attraction cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActive(ctx, active, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("attraction cache write failed")
		}
	}
	return active, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActive(ctx); err != nil {
		s.logger.WithError(err).Warn("attraction cache invalidation failed")
	}
}
