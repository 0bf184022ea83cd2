package idempotency

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/robertarktes/park-bookings/internal/observability"
)

const (
	HeaderKey    = "Idempotency-Key"
	HeaderReplay = "Idempotent-Replay"

	lockTTL = 2 * time.Minute
)

// Response is a stored reply replayed for a repeated key.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Idempotency struct {
	store  Store
	ttl    time.Duration
	logger observability.Logger
}

func NewIdempotency(store Store, ttl time.Duration, logger observability.Logger) *Idempotency {
	return &Idempotency{store: store, ttl: ttl, logger: logger}
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware replays the stored response when a request repeats an
// Idempotency-Key. Requests without the header pass through. Only 201 Created
// is stored; failed or declined requests run again on retry.
func (i *Idempotency) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderKey)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = r.Method + ":" + r.URL.Path + ":" + key
		ctx := r.Context()
		logger := i.logger.WithField("idempotency_key", key)

		if i.replay(ctx, w, key, logger) {
			return
		}

		locked, err := i.store.Lock(ctx, key, lockTTL)
		if err != nil {
			logger.WithError(err).Warn("idempotency lock failed")
		} else if !locked {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"request with this Idempotency-Key is in progress"}`))
			return
		} else {
			defer func() {
				if err := i.store.Unlock(context.WithoutCancel(ctx), key); err != nil {
					logger.WithError(err).Warn("idempotency unlock failed")
				}
			}()
			// Another request may have finished between the lookup and the lock.
			if i.replay(ctx, w, key, logger) {
				return
			}
		}

		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusCreated {
			return
		}
		resp := Response{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := i.store.Set(context.WithoutCancel(ctx), key, resp, i.ttl); err != nil {
			logger.WithError(err).Warn("idempotency store failed")
		}
	})
}

func (i *Idempotency) replay(ctx context.Context, w http.ResponseWriter, key string, logger observability.Logger) bool {
	cached, err := i.store.Get(ctx, key)
	if err != nil {
		logger.WithError(err).Warn("idempotency lookup failed")
		return false
	}
	if cached == nil {
		return false
	}
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.Header().Set(HeaderReplay, "true")
	w.WriteHeader(cached.Status)
	_, _ = w.Write(cached.Body)
	return true
}
