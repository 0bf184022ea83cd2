package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robertarktes/park-bookings/internal/accounts"
	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/catalog"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/payment"
)

// ReadinessCheck reports whether one backing service is reachable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	bookings *booking.Service
	catalog  *catalog.Service
	accounts *accounts.Service
	checks   []ReadinessCheck
}

func NewHandlers(bookings *booking.Service, catalog *catalog.Service, accounts *accounts.Service, checks ...ReadinessCheck) *Handlers {
	return &Handlers{
		bookings: bookings,
		catalog:  catalog,
		accounts: accounts,
		checks:   checks,
	}
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(domain.ErrInvalidInput, "malformed body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.Wrapf(domain.ErrInvalidInput, "%s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

// loadParties fetches the attraction and, when personID is set, the person
// concurrently. An unknown person yields nil so the booking reports it.
func (h *Handlers) loadParties(ctx context.Context, attractionID, personID uuid.UUID) (*domain.Attraction, *domain.Person, error) {
	var (
		attraction *domain.Attraction
		person     *domain.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := h.catalog.Get(gctx, attractionID)
		if err != nil {
			return errors.Wrapf(err, "attraction %s", attractionID)
		}
		attraction = a
		return nil
	})
	if personID != uuid.Nil {
		g.Go(func() error {
			p, err := h.accounts.Get(gctx, personID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "person %s", personID)
			}
			person = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return attraction, person, nil
}

func (h *Handlers) ListAttractions(w http.ResponseWriter, r *http.Request) {
	attractions, err := h.catalog.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponses(attractions))
}

func (h *Handlers) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponse(*a))
}

type quoteResponse struct {
	Attraction domain.AttractionRef `json:"attraction"`
	Tier       string               `json:"tier,omitempty"`
	Amount     string               `json:"amount"`
}

// Quote shows what a person, or a guest when person_id is absent, would pay.
func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var personID uuid.UUID
	if raw := r.URL.Query().Get("person_id"); raw != "" {
		if personID, err = uuid.Parse(raw); err != nil {
			writeError(w, r, errors.Wrapf(domain.ErrInvalidInput, "person_id %q", raw))
			return
		}
	}

	a, person, err := h.loadParties(r.Context(), id, personID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if personID != uuid.Nil && person == nil {
		writeError(w, r, errors.Wrapf(domain.ErrNotFound, "person %s", personID))
		return
	}

	resp := quoteResponse{Attraction: a.Ref(), Amount: domain.Price(*a, person).StringFixed(2)}
	if person != nil {
		resp.Tier = string(person.Tier())
	}
	writeJSON(w, http.StatusOK, resp)
}

// inputSource turns the optional payment object into the booking's payment
// input. No payment object means the visitor declined to pay.
func inputSource(in *payment.RawInput) payment.InputSource {
	if in == nil {
		return payment.Declined()
	}
	return payment.Static(*in)
}

type bookingRequest struct {
	PersonID     uuid.UUID         `json:"person_id"`
	AttractionID uuid.UUID         `json:"attraction_id"`
	Date         string            `json:"date"`
	Payment      *payment.RawInput `json:"payment"`
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, person, err := h.loadParties(r.Context(), req.AttractionID, req.PersonID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.bookings.BookForPerson(r.Context(), person, *a, req.Date, inputSource(req.Payment))
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

type guestBookingRequest struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	AttractionID uuid.UUID         `json:"attraction_id"`
	Date         string            `json:"date"`
	Payment      *payment.RawInput `json:"payment"`
}

func (h *Handlers) CreateGuestBooking(w http.ResponseWriter, r *http.Request) {
	var req guestBookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.catalog.Get(r.Context(), req.AttractionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	guest := domain.Guest{Name: req.Name, Email: req.Email}
	res, err := h.bookings.BookForGuest(r.Context(), guest, *a, req.Date, inputSource(req.Payment))
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (h *Handlers) PersonReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.bookings.HistoryForPerson(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponses(history))
}

func (h *Handlers) GuestReservations(w http.ResponseWriter, r *http.Request) {
	history, err := h.bookings.HistoryForGuest(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponses(history))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var reg accounts.Registration
	if err := decode(r, &reg); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.accounts.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(p))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// UpdateProfile changes a person's own fields. Changing the role needs an
// administrator in PersonHeader.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var upd accounts.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}

	if upd.Role != nil {
		actor, ok := resolveActor(w, r, h.accounts.Get)
		if !ok {
			return
		}
		if actor == nil || !actor.IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "only an administrator can change roles"})
			return
		}
	}

	p, err := h.accounts.UpdateProfile(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

func (h *Handlers) ListAllAttractions(w http.ResponseWriter, r *http.Request) {
	attractions, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponses(attractions))
}

func (h *Handlers) AddAttraction(w http.ResponseWriter, r *http.Request) {
	var form catalog.AttractionForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.catalog.Add(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttractionResponse(a))
}

func (h *Handlers) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form catalog.AttractionForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := form.Attraction()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = id
	if err := h.catalog.Update(r.Context(), a); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponse(a))
}

func (h *Handlers) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	all, err := h.bookings.AllReservations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponses(all))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) ChangeReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := domain.ParseReservationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.bookings.ChangeStatus(r.Context(), id, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if admin := actorFrom(r.Context()); admin != nil {
		LoggerFromContext(r.Context()).WithFields(map[string]interface{}{
			"admin_id":       admin.ID,
			"reservation_id": id,
			"status":         target,
		}).Info("reservation status changed by admin")
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.accounts.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponses(clients))
}

func (h *Handlers) AttractionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookings.Popularity(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []domain.AttractionPopularity{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		LoggerFromContext(r.Context()).WithField("failed", failed).Warn("not ready")
		writeJSON(w, http.StatusServiceUnavailable, failed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
