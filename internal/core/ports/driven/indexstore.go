package driven

import (
	"context"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/index"
)

// IndexStore persists built vector indexes, one storage location per
// user. The location is derived deterministically from the user
// identity, which must already be validated.
type IndexStore interface {
	// Save serializes the index to the user's storage location,
	// atomically replacing any previous index. A reader that opens
	// the location after Save returns sees only the new content.
	Save(ctx context.Context, user domain.UserID, idx *index.Index) error

	// Load reads the user's persisted index back into memory.
	// Returns domain.ErrIndexNotFound (wrapped) when the location
	// does not exist or is structurally invalid.
	Load(ctx context.Context, user domain.UserID) (*index.Index, error)

	// DeleteUser removes the user's storage location recursively.
	// Returns domain.ErrCacheNotFound (wrapped) when it does not exist.
	DeleteUser(ctx context.Context, user domain.UserID) error

	// DeleteAll removes the shared storage root for all users.
	// Returns domain.ErrCacheNotFound (wrapped) when the root does
	// not exist.
	DeleteAll(ctx context.Context) error
}
