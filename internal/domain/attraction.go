package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attraction is a bookable ride or show. Capacity is informational and is
// not checked against existing reservations.
type Attraction struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Description string
	Capacity    int
	Duration    string
	BasePrice   decimal.Decimal
	Status      AttractionStatus
}

func (a Attraction) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.Wrap(ErrInvalidInput, "attraction name is required")
	}
	if a.BasePrice.IsNegative() {
		return errors.Wrapf(ErrInvalidInput, "attraction price %s is negative", a.BasePrice)
	}
	if a.Capacity < 0 {
		return errors.Wrapf(ErrInvalidInput, "attraction capacity %d is negative", a.Capacity)
	}
	if _, err := ParseAttractionStatus(string(a.Status)); err != nil {
		return err
	}
	return nil
}

func (a Attraction) Bookable() bool {
	return a.Status == AttractionActive
}

func (a Attraction) Ref() AttractionRef {
	return AttractionRef{ID: a.ID, Name: a.Name}
}

// AttractionRef is the part of an attraction carried on reservation rows.
type AttractionRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AttractionPopularity counts the live reservations of one attraction.
type AttractionPopularity struct {
	Attraction   AttractionRef `json:"attraction"`
	Reservations int           `json:"reservations"`
}
