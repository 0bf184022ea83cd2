package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robertarktes/park-bookings/internal/domain"
)

type attractionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Duration    string    `json:"duration"`
	BasePrice   string    `json:"base_price"`
	Status      string    `json:"status"`
}

func toAttractionResponse(a domain.Attraction) attractionResponse {
	return attractionResponse{
		ID:          a.ID,
		Name:        a.Name,
		Category:    a.Category,
		Description: a.Description,
		Capacity:    a.Capacity,
		Duration:    a.Duration,
		BasePrice:   a.BasePrice.StringFixed(2),
		Status:      string(a.Status),
	}
}

func toAttractionResponses(as []domain.Attraction) []attractionResponse {
	return lo.Map(as, func(a domain.Attraction, _ int) attractionResponse {
		return toAttractionResponse(a)
	})
}

type paymentResponse struct {
	Amount  string     `json:"amount"`
	PaidAt  string     `json:"paid_at"`
	Method  string     `json:"method"`
	Status  string     `json:"status"`
	PayerID *uuid.UUID `json:"payer_id,omitempty"`
}

type reservationResponse struct {
	ID         uuid.UUID            `json:"id"`
	Attraction domain.AttractionRef `json:"attraction"`
	Date       string               `json:"date"`
	Status     string               `json:"status"`
	Person     *domain.PersonRef    `json:"person,omitempty"`
	Guest      *domain.Guest        `json:"guest,omitempty"`
	Payment    *paymentResponse     `json:"payment,omitempty"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:         r.ID,
		Attraction: r.Attraction(),
		Date:       r.Date.Format(domain.VisitDateLayout),
		Status:     string(r.Status()),
	}
	if p, ok := r.Holder().Person(); ok {
		resp.Person = &p
	}
	if g, ok := r.Holder().Guest(); ok {
		resp.Guest = &g
	}
	if r.Payment != nil {
		resp.Payment = &paymentResponse{
			Amount:  r.Payment.Amount.StringFixed(2),
			PaidAt:  r.Payment.PaidAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Method:  string(r.Payment.Method),
			Status:  string(r.Payment.Status),
			PayerID: r.Payment.PayerID,
		}
	}
	return resp
}

func toReservationResponses(rs []*domain.Reservation) []reservationResponse {
	return lo.Map(rs, func(r *domain.Reservation, _ int) reservationResponse {
		return toReservationResponse(r)
	})
}

type summaryResponse struct {
	ID         uuid.UUID            `json:"id"`
	Attraction domain.AttractionRef `json:"attraction"`
	Date       string               `json:"date"`
	Status     string               `json:"status"`
}

func toSummaryResponses(ss []domain.ReservationSummary) []summaryResponse {
	return lo.Map(ss, func(s domain.ReservationSummary, _ int) summaryResponse {
		return summaryResponse{
			ID:         s.ID,
			Attraction: s.Attraction,
			Date:       s.Date.Format(domain.VisitDateLayout),
			Status:     string(s.Status),
		}
	})
}

type personResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate string    `json:"birth_date,omitempty"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	Rate      string    `json:"rate"`
}

func toPersonResponse(p *domain.Person) personResponse {
	resp := personResponse{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  string(p.Role()),
		Tier:  string(p.Tier()),
		Rate:  p.Rate().StringFixed(2),
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format(domain.VisitDateLayout)
	}
	return resp
}

func toPersonResponses(ps []*domain.Person) []personResponse {
	return lo.Map(ps, func(p *domain.Person, _ int) personResponse {
		return toPersonResponse(p)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
