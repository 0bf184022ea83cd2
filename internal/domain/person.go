package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Person is a registered account. Tier and rate are derived from role and
// birth date and can only change through SetRole and SetBirthDate.
type Person struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	BirthDate    *time.Time

	role Role
	tier Tier
	rate decimal.Decimal
}

type PersonParams struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	BirthDate    *time.Time
	Role         Role
}

func NewPerson(p PersonParams, asOf time.Time) *Person {
	person := &Person{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: p.PasswordHash,
		BirthDate:    p.BirthDate,
		role:         p.Role,
	}
	person.reclassify(asOf)
	return person
}

func (p *Person) Role() Role { return p.role }
func (p *Person) Tier() Tier { return p.tier }
func (p *Person) Rate() decimal.Decimal { return p.rate }
func (p *Person) IsAdmin() bool { return p.role == RoleAdmin }
func (p *Person) Ref() PersonRef { return PersonRef{ID: p.ID, Name: p.Name} }

func (p *Person) SetRole(r Role, asOf time.Time) {
	p.role = r
	p.reclassify(asOf)
}

func (p *Person) SetBirthDate(d *time.Time, asOf time.Time) {
	p.BirthDate = d
	p.reclassify(asOf)
}

func (p *Person) reclassify(asOf time.Time) {
	p.tier, p.rate = Classify(p.role, p.BirthDate, asOf)
}

// PersonRef identifies a registered person on a reservation row.
type PersonRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Guest is the identity of an anonymous booking.
type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (g Guest) Complete() bool {
	return strings.TrimSpace(g.Name) != "" && strings.TrimSpace(g.Email) != ""
}
