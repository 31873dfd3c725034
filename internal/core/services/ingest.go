package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/retolabs/docqa/internal/chunker"
	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
	"github.com/retolabs/docqa/internal/core/ports/driving"
	"github.com/retolabs/docqa/internal/index"
	"github.com/retolabs/docqa/internal/logger"
)

// Ensure Ingestor implements the driving port.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor builds and installs a user's index from an uploaded
// document. The upload is spooled to a scratch file so the extraction
// tool can read it from disk; the scratch file is removed when
// ingestion finishes, successfully or not.
type Ingestor struct {
	registry *Registry
	loader   driven.DocumentLoader
	embedder driven.EmbeddingService
	splitter *chunker.Splitter

	scratchDir string
}

// IngestorOption configures the ingestor.
type IngestorOption func(*Ingestor)

// WithScratchDir sets the directory for temporary upload files.
// Defaults to the system temp directory.
func WithScratchDir(dir string) IngestorOption {
	return func(i *Ingestor) {
		if dir != "" {
			i.scratchDir = dir
		}
	}
}

// NewIngestor creates an ingestor wired to the given collaborators.
func NewIngestor(registry *Registry, loader driven.DocumentLoader, embedder driven.EmbeddingService, splitter *chunker.Splitter, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{
		registry:   registry,
		loader:     loader,
		embedder:   embedder,
		splitter:   splitter,
		scratchDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest extracts, chunks, embeds and indexes the document read from r,
// then persists and registers the resulting index for the user.
// A successful ingest replaces the user's previous index in full.
func (i *Ingestor) Ingest(ctx context.Context, user domain.UserID, r io.Reader) error {
	if err := user.Validate(); err != nil {
		return err
	}

	logger.Section("Ingestion")

	path, err := i.spool(user, r)
	if err != nil {
		return fmt.Errorf("%w: spooling upload for user %q: %v", domain.ErrIngestion, user, err)
	}
	defer os.Remove(path)

	doc, err := i.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("loading document for user %q: %w", user, err)
	}
	logger.Debug("extracted %d pages from upload for user %q", len(doc.Pages), user)

	chunks := i.splitter.Split(doc)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document for user %q produced no chunks", domain.ErrIngestion, user)
	}
	logger.Debug("split document into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding %d chunks for user %q: %v", domain.ErrEmbeddingService, len(chunks), user, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbeddingService, len(vectors), len(chunks))
	}
	for n := range chunks {
		chunks[n].Embedding = vectors[n]
	}

	idx, err := index.Build(len(vectors[0]), chunks)
	if err != nil {
		return fmt.Errorf("building index for user %q: %w", user, err)
	}

	if err := i.registry.Install(ctx, user, idx); err != nil {
		return fmt.Errorf("installing index for user %q: %w", user, err)
	}
	logger.Info("ingested document %q for user %q (%d chunks, %d dimensions)",
		doc.Name, user, idx.Len(), idx.Dimensions())
	return nil
}

// spool writes the upload to a per-user scratch file and returns its
// path. The file name is derived from the user so concurrent uploads
// by the same user overwrite rather than accumulate. Errors are
// stripped of filesystem paths before they propagate.
func (i *Ingestor) spool(user domain.UserID, r io.Reader) (string, error) {
	if err := os.MkdirAll(i.scratchDir, 0o700); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", pathless(err))
	}

	path := filepath.Join(i.scratchDir, fmt.Sprintf("file_%s.pdf", user))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", pathless(err))
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing scratch file: %w", pathless(err))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing scratch file: %w", pathless(err))
	}
	return path, nil
}

// pathless strips the path from filesystem errors. Error messages
// carry the user identity, never the server's storage layout.
func pathless(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}
