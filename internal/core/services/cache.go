package services

import (
	"context"
	"fmt"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driving"
	"github.com/retolabs/docqa/internal/logger"
)

// Ensure Cache implements the driving port.
var _ driving.CacheService = (*Cache)(nil)

// Cache manages the lifecycle of persisted indexes and their registry
// entries. It is a thin facade over the Registry so the driving
// adapters depend on the port, not on the registry directly.
type Cache struct {
	registry *Registry
}

// NewCache creates a cache service backed by the given registry.
func NewCache(registry *Registry) *Cache {
	return &Cache{registry: registry}
}

// ClearUser removes the user's persisted index, registry entry and
// session. Returns domain.ErrCacheNotFound (wrapped) when the user has
// nothing to clear.
func (c *Cache) ClearUser(ctx context.Context, user domain.UserID) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if err := c.registry.RemoveUser(ctx, user); err != nil {
		return fmt.Errorf("clearing cache for user %q: %w", user, err)
	}
	logger.Info("cleared cache for user %q", user)
	return nil
}

// ClearAll removes every user's persisted index and empties the
// registry. Returns domain.ErrCacheNotFound (wrapped) when everything
// has already been cleared.
func (c *Cache) ClearAll(ctx context.Context) error {
	if err := c.registry.Clear(ctx); err != nil {
		return fmt.Errorf("clearing all caches: %w", err)
	}
	logger.Info("cleared all caches")
	return nil
}
