package payment

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrInputCancelled is returned by an InputSource when the visitor declines
// to pay.
var ErrInputCancelled = errors.New("payment input cancelled")

// Quote is what the visitor is asked to pay.
type Quote struct {
	Attraction string
	Amount     decimal.Decimal
}

// InputSource collects raw payment fields for one booking attempt. Collect
// blocks until the fields are supplied, the visitor cancels, or ctx ends.
type InputSource interface {
	Collect(ctx context.Context, q Quote) (RawInput, error)
}

type staticSource struct {
	in RawInput
}

// Static returns a source that always supplies in.
func Static(in RawInput) InputSource {
	return staticSource{in: in}
}

func (s staticSource) Collect(ctx context.Context, _ Quote) (RawInput, error) {
	if err := ctx.Err(); err != nil {
		return RawInput{}, err
	}
	return s.in, nil
}

type declinedSource struct{}

// Declined returns a source for a visitor who refuses to pay.
func Declined() InputSource {
	return declinedSource{}
}

func (declinedSource) Collect(context.Context, Quote) (RawInput, error) {
	return RawInput{}, ErrInputCancelled
}
