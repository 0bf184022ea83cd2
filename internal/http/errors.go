package http

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/robertarktes/park-bookings/internal/accounts"
	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeBookingError maps a failed booking to its HTTP reply. A cancelled
// booking is not an error for the client.
func writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	var berr *booking.Error
	if !errors.As(err, &berr) {
		writeError(w, r, err)
		return
	}

	resp := errorResponse{Error: berr.Category.String(), Code: string(berr.Code), Message: berr.Message()}
	switch berr.Category {
	case booking.CategoryCancelled:
		writeJSON(w, http.StatusOK, map[string]interface{}{"cancelled": true, "message": berr.Message()})
	case booking.CategoryValidation:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case booking.CategoryPersistence:
		LoggerFromContext(r.Context()).WithError(err).Error("booking needs manual follow-up")
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		status := http.StatusBadRequest
		if berr.Code == booking.CodeAttractionUnavailable {
			status = http.StatusConflict
		}
		writeJSON(w, status, resp)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "invalid status transition", Message: err.Error()})
	case errors.Is(err, domain.ErrSerializationFailure):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict, try again"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict"})
	default:
		LoggerFromContext(r.Context()).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
