package payment_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/payment"
)

var today = time.Date(2026, time.June, 15, 14, 30, 0, 0, time.UTC)

func validator() *payment.Validator {
	return payment.NewValidatorAt(func() time.Time { return today })
}

func card(number, expiry, cvv string) payment.RawInput {
	return payment.RawInput{Method: "card", CardNumber: number, Expiry: expiry, CVV: cvv}
}

func codeOf(t *testing.T, err error) payment.Code {
	t.Helper()
	var verr *payment.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Code
}

func TestValidateCard(t *testing.T) {
	amount := decimal.RequireFromString("17")
	payer := uuid.New()

	t.Run("valid card completes", func(t *testing.T) {
		p, err := validator().Validate(card("1234567890123456", "07/26", "123"), amount, &payer)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, p.Status)
		assert.Equal(t, domain.PaymentCard, p.Method)
		assert.True(t, amount.Equal(p.Amount))
		assert.Equal(t, &payer, p.PayerID)
		assert.Equal(t, today, p.PaidAt)
	})

	t.Run("spaces in card number are ignored", func(t *testing.T) {
		p, err := validator().Validate(card("1234 5678 9012 3456", "07/26", "123"), amount, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, p.Status)
		assert.Nil(t, p.PayerID)
	})

	t.Run("card expiring this month is still valid", func(t *testing.T) {
		_, err := validator().Validate(card("1234567890123456", "06/26", "123"), amount, nil)
		assert.NoError(t, err)
	})

	failures := []struct {
		name string
		in   payment.RawInput
		code payment.Code
	}{
		{"empty number", card("", "07/26", "123"), payment.CodeMissingFields},
		{"empty expiry", card("1234567890123456", "", "123"), payment.CodeMissingFields},
		{"empty cvv", card("1234567890123456", "07/26", ""), payment.CodeMissingFields},
		{"15 digits", card("123456789012345", "07/26", "123"), payment.CodeInvalidCardNumber},
		{"17 digits", card("12345678901234567", "07/26", "123"), payment.CodeInvalidCardNumber},
		{"letters in number", card("1234567890abcdef", "07/26", "123"), payment.CodeInvalidCardNumber},
		{"no slash", card("1234567890123456", "0726", "123"), payment.CodeInvalidExpiryFormat},
		{"three parts", card("1234567890123456", "07/26/01", "123"), payment.CodeInvalidExpiryFormat},
		{"non numeric month", card("1234567890123456", "ab/26", "123"), payment.CodeInvalidExpiryFormat},
		{"non numeric year", card("1234567890123456", "07/xx", "123"), payment.CodeInvalidExpiryFormat},
		{"month zero", card("1234567890123456", "00/27", "123"), payment.CodeInvalidMonth},
		{"month thirteen", card("1234567890123456", "13/27", "123"), payment.CodeInvalidMonth},
		{"expired long ago", card("1234567890123456", "01/20", "123"), payment.CodeCardExpired},
		{"expired last month", card("1234567890123456", "05/26", "123"), payment.CodeCardExpired},
		{"short cvv", card("1234567890123456", "07/26", "12"), payment.CodeInvalidCVV},
		{"alpha cvv", card("1234567890123456", "07/26", "12a"), payment.CodeInvalidCVV},
		{"long cvv", card("1234567890123456", "07/26", "1234"), payment.CodeInvalidCVV},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			p, err := validator().Validate(tt.in, amount, nil)
			assert.Equal(t, tt.code, codeOf(t, err))
			assert.Equal(t, domain.Payment{}, p)
		})
	}
}

func TestValidateCash(t *testing.T) {
	amount := decimal.NewFromInt(20)
	inputs := []payment.RawInput{
		{Method: "cash"},
		{Method: "CASH", CardNumber: "garbage", Expiry: "99/99", CVV: "x"},
	}
	for _, in := range inputs {
		p, err := validator().Validate(in, amount, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPending, p.Status)
		assert.Equal(t, domain.PaymentCash, p.Method)
		assert.True(t, amount.Equal(p.Amount))
	}
}

func TestValidateUnknownMethod(t *testing.T) {
	_, err := validator().Validate(payment.RawInput{Method: "cheque"}, decimal.NewFromInt(5), nil)
	assert.Equal(t, payment.CodeUnsupportedMethod, codeOf(t, err))

	var verr *payment.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Message())
}
