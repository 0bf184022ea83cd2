package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	redisadapter "github.com/robertarktes/park-bookings/internal/adapters/redis"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/idempotency"
)

func setupRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisContainer.Terminate(ctx) })

	addr, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache_ActiveAttractions(t *testing.T) {
	client := setupRedis(t)
	cache := redisadapter.NewCache(client)
	ctx := context.Background()

	_, ok, err := cache.GetActive(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	looping := domain.Attraction{
		ID:        uuid.New(),
		Name:      "Looping",
		Category:  "ride",
		Capacity:  24,
		Duration:  "3 min",
		BasePrice: decimal.RequireFromString("19.90"),
		Status:    domain.AttractionActive,
	}
	require.NoError(t, cache.SetActive(ctx, []domain.Attraction{looping}, time.Minute))

	got, ok, err := cache.GetActive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, looping.ID, got[0].ID)
	assert.True(t, got[0].BasePrice.Equal(looping.BasePrice))
	assert.Equal(t, domain.AttractionActive, got[0].Status)

	require.NoError(t, cache.InvalidateActive(ctx))
	_, ok, err = cache.GetActive(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Popularity(t *testing.T) {
	client := setupRedis(t)
	cache := redisadapter.NewCache(client)
	ctx := context.Background()

	stats := []domain.AttractionPopularity{
		{Attraction: domain.AttractionRef{ID: uuid.New(), Name: "Looping"}, Reservations: 5},
		{Attraction: domain.AttractionRef{ID: uuid.New(), Name: "Carousel"}, Reservations: 2},
	}
	require.NoError(t, cache.SetPopularity(ctx, stats, time.Minute))

	got, ok, err := cache.GetPopularity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, got)
}

func TestIdempotency_StoreAndLock(t *testing.T) {
	client := setupRedis(t)
	store := redisadapter.NewIdempotency(client)
	ctx := context.Background()

	resp, err := store.Get(ctx, "POST:/v1/bookings:k1")
	require.NoError(t, err)
	assert.Nil(t, resp)

	locked, err := store.Lock(ctx, "POST:/v1/bookings:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
	locked, err = store.Lock(ctx, "POST:/v1/bookings:k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, locked)

	want := idempotency.Response{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}
	require.NoError(t, store.Set(ctx, "POST:/v1/bookings:k1", want, time.Minute))
	require.NoError(t, store.Unlock(ctx, "POST:/v1/bookings:k1"))

	resp, err = store.Get(ctx, "POST:/v1/bookings:k1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, want, *resp)

	locked, err = store.Lock(ctx, "POST:/v1/bookings:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
}
