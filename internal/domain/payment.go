package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment settles one reservation. Card payments are COMPLETED once
// validated; cash payments stay PENDING until settled at the counter.
type Payment struct {
	Amount  decimal.Decimal
	PaidAt  time.Time
	Method  PaymentMethod
	Status  PaymentStatus
	PayerID *uuid.UUID
}

func (p Payment) Accepted() bool {
	return p.Status != PaymentRejected
}
