package domain

import "github.com/cockroachdb/errors"

// The string values below are the storage and wire vocabulary. Do not rename them.

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleAdmin:
		return r, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown role %q", s)
}

type Tier string

const (
	TierChild  Tier = "CHILD"
	TierAdult  Tier = "ADULT"
	TierSenior Tier = "SENIOR"
	TierGuest  Tier = "GUEST"
)

func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierChild, TierAdult, TierSenior, TierGuest:
		return t, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown tier %q", s)
}

type AttractionStatus string

const (
	AttractionActive   AttractionStatus = "ACTIVE"
	AttractionInactive AttractionStatus = "INACTIVE"
)

func ParseAttractionStatus(s string) (AttractionStatus, error) {
	switch st := AttractionStatus(s); st {
	case AttractionActive, AttractionInactive:
		return st, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown attraction status %q", s)
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCard, PaymentCash:
		return m, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown payment method %q", s)
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRejected  PaymentStatus = "REJECTED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentCompleted, PaymentRejected:
		return st, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown payment status %q", s)
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(s); st {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return st, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown reservation status %q", s)
}
