package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

// CatalogUpdatesChannel is the Redis channel the websocket hub relays.
const CatalogUpdatesChannel = "catalog_updates"

const (
	EventProductUpdated = "product_updated"
	EventCatalogSeeded  = "catalog_seeded"
)

type eventPublisher interface {
	Publish(ctx context.Context, msg models.WSMessage)
}

type CatalogEvents struct {
	redis *redis.Client
	log   *logger.Logger
}

func NewCatalogEvents(redisClient *redis.Client, log *logger.Logger) *CatalogEvents {
	return &CatalogEvents{redis: redisClient, log: log}
}

// Publish is best effort; a failed publish never fails the write that caused it.
func (e *CatalogEvents) Publish(ctx context.Context, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		e.log.Warn("catalog event marshal failed", "type", msg.Type, "error", err)
		return
	}
	if err := e.redis.Publish(ctx, CatalogUpdatesChannel, string(data)).Err(); err != nil {
		e.log.Warn("catalog event publish failed", "type", msg.Type, "error", err)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.WSMessage) {}
