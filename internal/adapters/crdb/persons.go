package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/robertarktes/park-bookings/internal/domain"
)

// Persons stores registered accounts. Tier and rate are not stored; they are
// derived again on every load.
type Persons struct {
	db *Repository
}

const personColumns = `id, name, email, phone, password_hash, birth_date, role`

func (s *Persons) scan(row pgx.Row) (*domain.Person, error) {
	var (
		params domain.PersonParams
		birth  *time.Time
		role   string
	)
	err := row.Scan(&params.ID, &params.Name, &params.Email, &params.Phone, &params.PasswordHash, &birth, &role)
	if err != nil {
		return nil, err
	}
	params.BirthDate = birth
	if params.Role, err = domain.ParseRole(role); err != nil {
		return nil, err
	}
	return domain.NewPerson(params, s.db.now()), nil
}

func (s *Persons) findOne(ctx context.Context, where string, arg interface{}) (*domain.Person, error) {
	row := s.db.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM persons WHERE `+where, arg)
	p, err := s.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (s *Persons) FindByEmail(ctx context.Context, email string) (*domain.Person, error) {
	return s.findOne(ctx, `email = $1`, email)
}

func (s *Persons) FindByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	return s.findOne(ctx, `id = $1`, id)
}

func (s *Persons) Save(ctx context.Context, p *domain.Person) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO persons (id, name, email, phone, password_hash, birth_date, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, p.Name, p.Email, p.Phone, p.PasswordHash, p.BirthDate, string(p.Role()))
	if err != nil {
		return uuid.Nil, mapPgError(err)
	}
	return id, nil
}

func (s *Persons) Update(ctx context.Context, p *domain.Person) error {
	result, err := s.db.pool.Exec(ctx, `
		UPDATE persons
		SET name = $2, email = $3, phone = $4, password_hash = $5, birth_date = $6, role = $7
		WHERE id = $1
	`, p.ID, p.Name, p.Email, p.Phone, p.PasswordHash, p.BirthDate, string(p.Role()))
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Persons) ListClients(ctx context.Context) ([]*domain.Person, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT `+personColumns+` FROM persons WHERE role = 'CLIENT' ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []*domain.Person
	for rows.Next() {
		p, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}
