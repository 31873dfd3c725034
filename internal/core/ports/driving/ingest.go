package driving

import (
	"context"
	"io"

	"github.com/retolabs/docqa/internal/core/domain"
)

// IngestService builds a user's searchable index from an uploaded
// document. Uploading again replaces the user's previous index
// (last-write-wins, no versioning).
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes the document read
	// from r, persists the index, and registers it for the user.
	Ingest(ctx context.Context, user domain.UserID, r io.Reader) error
}
