package booking

import (
	"fmt"

	"github.com/robertarktes/park-bookings/internal/payment"
)

type Code string

const (
	CodeAttractionUnavailable Code = "ATTRACTION_UNAVAILABLE"
	CodeInvalidDate           Code = "INVALID_DATE"
	CodeMissingGuestInfo      Code = "MISSING_GUEST_INFO"
	CodeMissingPerson         Code = "MISSING_PERSON"
	CodePersistenceFailure    Code = "PERSISTENCE_FAILURE"
	CodeCancelledByUser       Code = "CANCELLED_BY_USER"
)

// Category tells the caller what to do about a failed booking.
type Category int

const (
	// CategoryValidation: payment fields are malformed, the visitor fixes them.
	CategoryValidation Category = iota + 1
	// CategoryDomain: the request itself has to change.
	CategoryDomain
	// CategoryPersistence: payment went through but storage failed. Needs
	// manual follow-up.
	CategoryPersistence
	// CategoryCancelled: the visitor aborted, nothing was created.
	CategoryCancelled
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryDomain:
		return "domain"
	case CategoryPersistence:
		return "persistence"
	case CategoryCancelled:
		return "cancelled"
	}
	return "unknown"
}

var messages = map[Code]string{
	CodeAttractionUnavailable: "This attraction is not open for booking.",
	CodeInvalidDate:           "Please pick a valid visit date (YYYY-MM-DD).",
	CodeMissingGuestInfo:      "Please enter your name and email.",
	CodeMissingPerson:         "No account was given for this booking.",
	CodePersistenceFailure:    "Your payment was taken but the reservation could not be saved. Please contact the front desk.",
	CodeCancelledByUser:       "Booking cancelled.",
}

// Error is the outcome of a booking that did not produce a reservation.
type Error struct {
	Code     Code
	Category Category
	message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("booking %s: %v", e.Code, e.cause)
	}
	return fmt.Sprintf("booking %s", e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// Message is the human readable text for the failure.
func (e *Error) Message() string {
	return e.message
}

func domainError(c Code, cause error) *Error {
	return &Error{Code: c, Category: CategoryDomain, message: messages[c], cause: cause}
}

func validationError(verr *payment.ValidationError) *Error {
	return &Error{Code: Code(verr.Code), Category: CategoryValidation, message: verr.Message(), cause: verr}
}

func persistenceError(cause error) *Error {
	c := CodePersistenceFailure
	return &Error{Code: c, Category: CategoryPersistence, message: messages[c], cause: cause}
}

func cancelledError(cause error) *Error {
	c := CodeCancelledByUser
	return &Error{Code: c, Category: CategoryCancelled, message: messages[c], cause: cause}
}
