package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	childRate  = decimal.RequireFromString("0.50")
	adultRate  = decimal.RequireFromString("0.15")
	seniorRate = decimal.RequireFromString("0.30")
)

const (
	childAgeLimit = 12
	seniorAge     = 65
)

// Classify returns the discount tier and rate for a person with the given
// role and birth date, evaluated at asOf. Only clients with a known birth
// date get a discount.
func Classify(role Role, birthDate *time.Time, asOf time.Time) (Tier, decimal.Decimal) {
	if role != RoleClient || birthDate == nil {
		return TierGuest, decimal.Zero
	}

	age := AgeOn(*birthDate, asOf)
	switch {
	case age < childAgeLimit:
		return TierChild, childRate
	case age >= seniorAge:
		return TierSenior, seniorRate
	default:
		return TierAdult, adultRate
	}
}

// AgeOn returns the number of whole years elapsed between birth and asOf.
func AgeOn(birth, asOf time.Time) int {
	by, bm, bd := birth.Date()
	ay, am, ad := asOf.Date()
	age := ay - by
	if am < bm || (am == bm && ad < bd) {
		age--
	}
	return age
}

// Price is what the person pays for the attraction. A nil person is an
// anonymous visitor and pays the base price.
func Price(a Attraction, p *Person) decimal.Decimal {
	if p == nil {
		return a.BasePrice
	}
	amount := a.BasePrice.Mul(decimal.NewFromInt(1).Sub(p.Rate()))
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
