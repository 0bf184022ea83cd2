package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/robertarktes/park-bookings/internal/domain"
)

type Attractions struct {
	db *Repository
}

const attractionColumns = `id, name, category, description, capacity, duration, base_price::STRING, status`

func scanAttraction(row pgx.Row) (domain.Attraction, error) {
	var (
		a      domain.Attraction
		price  string
		status string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Description, &a.Capacity, &a.Duration, &price, &status); err != nil {
		return domain.Attraction{}, err
	}
	var err error
	if a.BasePrice, err = decimal.NewFromString(price); err != nil {
		return domain.Attraction{}, errors.Wrapf(err, "attraction %s price", a.ID)
	}
	if a.Status, err = domain.ParseAttractionStatus(status); err != nil {
		return domain.Attraction{}, err
	}
	return a, nil
}

func (s *Attractions) list(ctx context.Context, where string) ([]domain.Attraction, error) {
	rows, err := s.db.pool.Query(ctx, `SELECT `+attractionColumns+` FROM attractions `+where+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Attractions) FindAll(ctx context.Context) ([]domain.Attraction, error) {
	return s.list(ctx, "")
}

func (s *Attractions) FindActive(ctx context.Context) ([]domain.Attraction, error) {
	return s.list(ctx, `WHERE status = 'ACTIVE'`)
}

func (s *Attractions) FindByID(ctx context.Context, id uuid.UUID) (*domain.Attraction, error) {
	a, err := scanAttraction(s.db.pool.QueryRow(ctx, `SELECT `+attractionColumns+` FROM attractions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Attractions) Save(ctx context.Context, a domain.Attraction) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO attractions (id, name, category, description, capacity, duration, base_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::STRING::DECIMAL, $8)
	`, id, a.Name, a.Category, a.Description, a.Capacity, a.Duration, a.BasePrice.String(), string(a.Status))
	if err != nil {
		return uuid.Nil, mapPgError(err)
	}
	return id, nil
}

func (s *Attractions) Update(ctx context.Context, a domain.Attraction) error {
	result, err := s.db.pool.Exec(ctx, `
		UPDATE attractions
		SET name = $2, category = $3, description = $4, capacity = $5, duration = $6,
			base_price = $7::STRING::DECIMAL, status = $8
		WHERE id = $1
	`, a.ID, a.Name, a.Category, a.Description, a.Capacity, a.Duration, a.BasePrice.String(), string(a.Status))
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByID fails with domain.ErrConflict while reservations reference the
// attraction.
func (s *Attractions) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.pool.Exec(ctx, `DELETE FROM attractions WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
