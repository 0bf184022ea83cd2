package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/robertarktes/park-bookings/internal/domain"
)

var asOf = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

func birth(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		role  domain.Role
		birth *time.Time
		tier  domain.Tier
		rate  string
	}{
		{"newborn", domain.RoleClient, birth(2026, time.June, 1), domain.TierChild, "0.50"},
		{"eleven", domain.RoleClient, birth(2015, time.January, 1), domain.TierChild, "0.50"},
		{"twelfth birthday today", domain.RoleClient, birth(2014, time.June, 15), domain.TierAdult, "0.15"},
		{"twelve tomorrow", domain.RoleClient, birth(2014, time.June, 16), domain.TierChild, "0.50"},
		{"adult", domain.RoleClient, birth(1990, time.March, 3), domain.TierAdult, "0.15"},
		{"sixty four", domain.RoleClient, birth(1961, time.June, 16), domain.TierAdult, "0.15"},
		{"sixty fifth birthday today", domain.RoleClient, birth(1961, time.June, 15), domain.TierSenior, "0.30"},
		{"senior", domain.RoleClient, birth(1940, time.December, 24), domain.TierSenior, "0.30"},
		{"client without birth date", domain.RoleClient, nil, domain.TierGuest, "0"},
		{"admin", domain.RoleAdmin, birth(1940, time.December, 24), domain.TierGuest, "0"},
		{"admin child", domain.RoleAdmin, birth(2020, time.January, 1), domain.TierGuest, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, rate := domain.Classify(tt.role, tt.birth, asOf)
			assert.Equal(t, tt.tier, tier)
			assert.True(t, decimal.RequireFromString(tt.rate).Equal(rate), "rate %s", rate)
		})
	}
}

func TestPersonTierFollowsBirthDateAndRole(t *testing.T) {
	p := domain.NewPerson(domain.PersonParams{
		Name:      "Ada",
		Email:     "ada@example.com",
		BirthDate: birth(1990, time.March, 3),
		Role:      domain.RoleClient,
	}, asOf)
	assert.Equal(t, domain.TierAdult, p.Tier())

	p.SetBirthDate(birth(2020, time.March, 3), asOf)
	assert.Equal(t, domain.TierChild, p.Tier())
	assert.True(t, decimal.RequireFromString("0.5").Equal(p.Rate()))

	p.SetRole(domain.RoleAdmin, asOf)
	assert.Equal(t, domain.TierGuest, p.Tier())
	assert.True(t, p.Rate().IsZero())

	p.SetRole(domain.RoleClient, asOf)
	p.SetBirthDate(nil, asOf)
	assert.Equal(t, domain.TierGuest, p.Tier())
}

func TestPrice(t *testing.T) {
	ride := domain.Attraction{Name: "Looping", BasePrice: decimal.NewFromInt(20), Status: domain.AttractionActive}

	t.Run("anonymous pays base price", func(t *testing.T) {
		assert.True(t, ride.BasePrice.Equal(domain.Price(ride, nil)))
	})

	cases := map[string]struct {
		birth *time.Time
		role  domain.Role
		want  string
	}{
		"adult":  {birth(1990, time.March, 3), domain.RoleClient, "17"},
		"child":  {birth(2020, time.March, 3), domain.RoleClient, "10"},
		"senior": {birth(1950, time.March, 3), domain.RoleClient, "14"},
		"admin":  {birth(1990, time.March, 3), domain.RoleAdmin, "20"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			p := domain.NewPerson(domain.PersonParams{Name: name, BirthDate: c.birth, Role: c.role}, asOf)
			got := domain.Price(ride, p)
			assert.True(t, decimal.RequireFromString(c.want).Equal(got), "got %s", got)
			assert.False(t, got.IsNegative())
		})
	}

	t.Run("free attraction stays free", func(t *testing.T) {
		free := domain.Attraction{Name: "Garden", BasePrice: decimal.Zero, Status: domain.AttractionActive}
		p := domain.NewPerson(domain.PersonParams{BirthDate: birth(1990, time.March, 3), Role: domain.RoleClient}, asOf)
		assert.True(t, domain.Price(free, p).IsZero())
	})
}
