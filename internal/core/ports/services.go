package ports

import (
	"context"
	"errors"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDatasetLoaded(ctx context.Context, handler func(ctx context.Context, event domain.DatasetLoaded) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
