package driving

import (
	"context"

	"github.com/retolabs/docqa/internal/core/domain"
)

// CacheService manages the lifecycle of persisted indexes and their
// in-memory registry entries. Storage and registry must agree on
// existence: an operation that removes one removes the other.
//
// Clearing an already-cleared cache is reported as
// domain.ErrCacheNotFound rather than succeeding silently. This
// mirrors the upstream API, which exposes it as a 404.
type CacheService interface {
	// ClearUser removes the user's persisted index, registry entry
	// and session. Afterwards the system is indistinguishable from
	// "never uploaded" for that user.
	ClearUser(ctx context.Context, user domain.UserID) error

	// ClearAll removes every user's persisted index and empties the
	// registry and session store in full.
	ClearAll(ctx context.Context) error
}
