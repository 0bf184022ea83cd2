package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robertarktes/park-bookings/internal/domain"
)

type Code string

const (
	CodeMissingFields       Code = "MISSING_PAYMENT_FIELDS"
	CodeInvalidCardNumber   Code = "INVALID_CARD_NUMBER"
	CodeInvalidExpiryFormat Code = "INVALID_EXPIRY_FORMAT"
	CodeInvalidMonth        Code = "INVALID_MONTH"
	CodeCardExpired         Code = "CARD_EXPIRED"
	CodeInvalidCVV          Code = "INVALID_CVV"
	CodeUnsupportedMethod   Code = "UNSUPPORTED_METHOD"
)

var messages = map[Code]string{
	CodeMissingFields:       "Please fill in every payment field.",
	CodeInvalidCardNumber:   "The card number must contain exactly 16 digits.",
	CodeInvalidExpiryFormat: "Invalid expiry date, use MM/YY.",
	CodeInvalidMonth:        "The expiry month must be between 01 and 12.",
	CodeCardExpired:         "The card has expired, please use a valid card.",
	CodeInvalidCVV:          "The CVV must contain exactly 3 digits.",
	CodeUnsupportedMethod:   "Payment method must be card or cash.",
}

// ValidationError reports payment input the visitor has to correct.
type ValidationError struct {
	Code Code
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payment validation failed: %s", e.Code)
}

// Message is the text shown to the visitor.
func (e *ValidationError) Message() string {
	return messages[e.Code]
}

func invalid(c Code) error {
	return &ValidationError{Code: c}
}

// RawInput is payment data exactly as the visitor typed it.
type RawInput struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

const (
	cardDigits = 16
	cvvDigits  = 3
)

type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt returns a validator whose notion of "today" comes from now.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate turns raw input into a payment for amount. Bad input is reported
// as a *ValidationError; no other error is returned.
func (v *Validator) Validate(in RawInput, amount decimal.Decimal, payer *uuid.UUID) (domain.Payment, error) {
	method, err := domain.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(in.Method)))
	if err != nil {
		return domain.Payment{}, invalid(CodeUnsupportedMethod)
	}

	p := domain.Payment{
		Amount:  amount,
		PaidAt:  v.now(),
		Method:  method,
		PayerID: payer,
	}

	switch method {
	case domain.PaymentCash:
		p.Status = domain.PaymentPending
		return p, nil
	default:
		if err := v.checkCard(in); err != nil {
			return domain.Payment{}, err
		}
		p.Status = domain.PaymentCompleted
		return p, nil
	}
}

func (v *Validator) checkCard(in RawInput) error {
	if in.CardNumber == "" || in.Expiry == "" || in.CVV == "" {
		return invalid(CodeMissingFields)
	}

	number := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, in.CardNumber)
	if !digits(number, cardDigits) {
		return invalid(CodeInvalidCardNumber)
	}

	if err := v.checkExpiry(in.Expiry); err != nil {
		return err
	}

	if !digits(in.CVV, cvvDigits) {
		return invalid(CodeInvalidCVV)
	}
	return nil
}

func (v *Validator) checkExpiry(expiry string) error {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return invalid(CodeInvalidExpiryFormat)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return invalid(CodeInvalidExpiryFormat)
	}
	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return invalid(CodeInvalidExpiryFormat)
	}
	if month < 1 || month > 12 {
		return invalid(CodeInvalidMonth)
	}

	now := v.now()
	// Day 0 of the following month is the last day of the expiry month.
	lastDay := time.Date(2000+yy, time.Month(month)+1, 0, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if lastDay.Before(today) {
		return invalid(CodeCardExpired)
	}
	return nil
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
