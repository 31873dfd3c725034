package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retolabs/docqa/internal/adapters/driven/storage/memory"
	"github.com/retolabs/docqa/internal/chunker"
	"github.com/retolabs/docqa/internal/core/domain"
)

func testDocument() *domain.Document {
	return &domain.Document{
		Name: "upload.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: "The mitochondria is the powerhouse of the cell."},
			{Number: 2, Text: "Photosynthesis converts light into chemical energy."},
		},
	}
}

func newTestIngestor(t *testing.T, loader *mockLoader, embedder *mockEmbedder) (*Ingestor, *Registry) {
	t.Helper()
	reg := NewRegistry(memory.NewStore())
	ing := NewIngestor(reg, loader, embedder, chunker.New(), WithScratchDir(t.TempDir()))
	return ing, reg
}

func TestIngest_Success(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	embedder := newMockEmbedder(8)
	ing, reg := newTestIngestor(t, loader, embedder)

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)

	idx, err := reg.GetOrLoad(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 8, idx.Dimensions())

	// One batch call covering every chunk.
	require.Len(t, embedder.batchCalls, 1)
	assert.Len(t, embedder.batchCalls[0], 2)
}

func TestIngest_ScratchFileNaming(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	ing, _ := newTestIngestor(t, loader, newMockEmbedder(4))

	require.NoError(t, ing.Ingest(context.Background(), "alice", strings.NewReader("pdf bytes")))

	require.Len(t, loader.paths, 1)
	assert.Equal(t, "file_alice.pdf", filepath.Base(loader.paths[0]))
}

func TestIngest_ScratchFileRemoved(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	ing, _ := newTestIngestor(t, loader, newMockEmbedder(4))

	require.NoError(t, ing.Ingest(context.Background(), "alice", strings.NewReader("pdf bytes")))

	require.Len(t, loader.paths, 1)
	_, err := os.Stat(loader.paths[0])
	assert.True(t, os.IsNotExist(err))
}

func TestIngest_ScratchFileRemovedOnFailure(t *testing.T) {
	loader := &mockLoader{err: errors.New("corrupt pdf")}
	ing, _ := newTestIngestor(t, loader, newMockEmbedder(4))

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("junk"))
	require.Error(t, err)

	require.Len(t, loader.paths, 1)
	_, statErr := os.Stat(loader.paths[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngest_InvalidUser(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	ing, _ := newTestIngestor(t, loader, newMockEmbedder(4))

	tests := []struct {
		name string
		user domain.UserID
	}{
		{name: "empty", user: ""},
		{name: "path traversal", user: ".."},
		{name: "separator", user: "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ing.Ingest(context.Background(), tt.user, strings.NewReader("pdf"))
			assert.ErrorIs(t, err, domain.ErrInvalidUser)
		})
	}

	// Nothing reached the loader.
	assert.Empty(t, loader.paths)
}

func TestIngest_LoaderFailure(t *testing.T) {
	loader := &mockLoader{err: domain.ErrIngestion}
	ing, reg := newTestIngestor(t, loader, newMockEmbedder(4))

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("junk"))
	assert.ErrorIs(t, err, domain.ErrIngestion)
	assert.False(t, reg.Registered("alice"))
}

func TestIngest_EmbedderFailure(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	embedder := newMockEmbedder(4)
	embedder.failBatch = true
	ing, reg := newTestIngestor(t, loader, embedder)

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)

	// A failed ingest leaves no partial index behind.
	assert.False(t, reg.Registered("alice"))
	_, err = reg.GetOrLoad(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIngest_EmptyDocument(t *testing.T) {
	loader := &mockLoader{doc: &domain.Document{
		Name:  "blank.pdf",
		Pages: []domain.Page{{Number: 1, Text: "   "}},
	}}
	ing, _ := newTestIngestor(t, loader, newMockEmbedder(4))

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestIngest_SpoolFailureOmitsScratchPath(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	reg := NewRegistry(memory.NewStore())

	// A file where the scratch directory should be makes spooling fail.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	ing := NewIngestor(reg, loader, newMockEmbedder(4), chunker.New(),
		WithScratchDir(filepath.Join(blocker, "scratch")))

	err := ing.Ingest(context.Background(), "alice", strings.NewReader("pdf"))
	require.ErrorIs(t, err, domain.ErrIngestion)

	// The message names the user but never the filesystem layout.
	assert.Contains(t, err.Error(), `"alice"`)
	assert.NotContains(t, err.Error(), parent)
	assert.Empty(t, loader.paths)
}

func TestIngest_ReplacesPreviousIndex(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	ing, reg := newTestIngestor(t, loader, newMockEmbedder(4))
	ctx := context.Background()

	require.NoError(t, ing.Ingest(ctx, "alice", strings.NewReader("first upload")))

	loader.doc = &domain.Document{
		Name:  "second.pdf",
		Pages: []domain.Page{{Number: 1, Text: "a single replacement page"}},
	}
	require.NoError(t, ing.Ingest(ctx, "alice", strings.NewReader("second upload")))

	idx, err := reg.GetOrLoad(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, "second.pdf", idx.Chunks()[0].Document)
}
