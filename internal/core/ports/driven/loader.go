package driven

import (
	"context"

	"github.com/retolabs/docqa/internal/core/domain"
)

// DocumentLoader extracts page-level text from an uploaded file on disk.
// Loaders return domain.ErrIngestion (wrapped) when the file is
// unreadable, corrupt, or contains no extractable text.
type DocumentLoader interface {
	// Load reads the file at path and returns its ordered pages.
	Load(ctx context.Context, path string) (*domain.Document, error)
}
