package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robertarktes/park-bookings/internal/idempotency"
	"github.com/robertarktes/park-bookings/internal/observability"
)

// SetupRouter wires the public and admin routes. rl and idemp may be nil,
// which disables rate limiting and idempotent replay.
func SetupRouter(h *Handlers, logger observability.Logger, rl Limiter, idemp *idempotency.Idempotency) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		if rl != nil {
			r.Use(RateLimitMiddleware(rl))
		}

		r.Get("/v1/attractions", h.ListAttractions)
		r.Get("/v1/attractions/{id}", h.GetAttraction)
		r.Get("/v1/attractions/{id}/quote", h.Quote)

		r.Group(func(r chi.Router) {
			if idemp != nil {
				r.Use(idemp.Middleware)
			}
			r.Post("/v1/bookings", h.CreateBooking)
			r.Post("/v1/bookings/guest", h.CreateGuestBooking)
		})

		r.Get("/v1/persons/{id}/reservations", h.PersonReservations)
		r.Get("/v1/guests/reservations", h.GuestReservations)
		r.Post("/v1/persons", h.Register)
		r.Post("/v1/sessions", h.Login)
		r.Put("/v1/persons/{id}", h.UpdateProfile)

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(AdminMiddleware(h.accounts.Get))

			r.Get("/attractions", h.ListAllAttractions)
			r.Post("/attractions", h.AddAttraction)
			r.Put("/attractions/{id}", h.UpdateAttraction)
			r.Delete("/attractions/{id}", h.DeleteAttraction)
			r.Get("/reservations", h.ListReservations)
			r.Patch("/reservations/{id}", h.ChangeReservationStatus)
			r.Get("/clients", h.ListClients)
			r.Get("/stats/attractions", h.AttractionStats)
		})
	})

	return r
}
