package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/robertarktes/park-bookings/internal/domain"
)

const (
	activeAttractionsKey = "park:attractions:active"
	popularityKey        = "park:stats:popularity"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

type cachedAttraction struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	Duration    string `json:"duration"`
	BasePrice   string `json:"base_price"`
	Status      string `json:"status"`
}

func (c *Cache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) GetActive(ctx context.Context) ([]domain.Attraction, bool, error) {
	var cached []cachedAttraction
	ok, err := c.getJSON(ctx, activeAttractionsKey, &cached)
	if err != nil || !ok {
		return nil, false, err
	}
	out := make([]domain.Attraction, 0, len(cached))
	for _, ca := range cached {
		a, err := ca.attraction()
		if err != nil {
			return nil, false, err
		}
		out = append(out, a)
	}
	return out, true, nil
}

func (c *Cache) SetActive(ctx context.Context, attractions []domain.Attraction, ttl time.Duration) error {
	cached := make([]cachedAttraction, 0, len(attractions))
	for _, a := range attractions {
		cached = append(cached, cachedAttraction{
			ID:          a.ID.String(),
			Name:        a.Name,
			Category:    a.Category,
			Description: a.Description,
			Capacity:    a.Capacity,
			Duration:    a.Duration,
			BasePrice:   a.BasePrice.String(),
			Status:      string(a.Status),
		})
	}
	return c.setJSON(ctx, activeAttractionsKey, cached, ttl)
}

func (c *Cache) InvalidateActive(ctx context.Context) error {
	return c.client.Del(ctx, activeAttractionsKey).Err()
}

func (c *Cache) GetPopularity(ctx context.Context) ([]domain.AttractionPopularity, bool, error) {
	var stats []domain.AttractionPopularity
	ok, err := c.getJSON(ctx, popularityKey, &stats)
	if err != nil || !ok {
		return nil, false, err
	}
	return stats, true, nil
}

func (c *Cache) SetPopularity(ctx context.Context, stats []domain.AttractionPopularity, ttl time.Duration) error {
	return c.setJSON(ctx, popularityKey, stats, ttl)
}
