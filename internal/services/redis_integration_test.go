package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisBackedStores_Integration(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	t.Run("refresh tokens are single use", func(t *testing.T) {
		store := NewRedisTokenStore(client)
		userID := uuid.New()
		require.NoError(t, store.Put(ctx, "tok", userID, time.Minute))

		got, err := store.Take(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, userID, got)

		_, err = store.Take(ctx, "tok")
		assert.ErrorIs(t, err, errTokenNotFound)
	})

	t.Run("cache miss and hit", func(t *testing.T) {
		cache := NewRedisCache(client)
		_, err := cache.Get(ctx, "missing")
		assert.ErrorIs(t, err, errCacheMiss)

		require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
		v, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		require.NoError(t, cache.Del(ctx, "k"))
		_, err = cache.Get(ctx, "k")
		assert.ErrorIs(t, err, errCacheMiss)
	})

	t.Run("catalog events reach subscribers", func(t *testing.T) {
		sub := client.Subscribe(ctx, CatalogUpdatesChannel)
		defer sub.Close()
		_, err := sub.Receive(ctx)
		require.NoError(t, err)

		NewCatalogEvents(client, logger.NewNop()).Publish(ctx, models.WSMessage{
			Type:    EventProductUpdated,
			Payload: models.ProductUpdatedEvent{ProductID: 3},
		})

		select {
		case msg := <-sub.Channel():
			var got struct {
				Type    string                     `json:"type"`
				Payload models.ProductUpdatedEvent `json:"payload"`
			}
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
			assert.Equal(t, EventProductUpdated, got.Type)
			assert.Equal(t, int64(3), got.Payload.ProductID)
		case <-time.After(5 * time.Second):
			t.Fatal("no catalog event received")
		}
	})
}
