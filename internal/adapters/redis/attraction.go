package redis

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robertarktes/park-bookings/internal/domain"
)

func (ca cachedAttraction) attraction() (domain.Attraction, error) {
	id, err := uuid.Parse(ca.ID)
	if err != nil {
		return domain.Attraction{}, errors.Wrap(err, "cached attraction id")
	}
	price, err := decimal.NewFromString(ca.BasePrice)
	if err != nil {
		return domain.Attraction{}, errors.Wrap(err, "cached attraction price")
	}
	return domain.Attraction{
		ID:          id,
		Name:        ca.Name,
		Category:    ca.Category,
		Description: ca.Description,
		Capacity:    ca.Capacity,
		Duration:    ca.Duration,
		BasePrice:   price,
		Status:      domain.AttractionStatus(ca.Status),
	}, nil
}
