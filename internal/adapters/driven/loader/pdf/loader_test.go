package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

// tempFile creates a placeholder file so the existence check passes.
func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DocumentLoader = (*Loader)(nil)
}

func TestLoad_SplitsPagesOnFormFeed(t *testing.T) {
	runner := &mockRunner{output: []byte("page one text\fpage two text\fpage three text\f")}
	loader := New(WithRunner(runner))

	doc, err := loader.Load(context.Background(), tempFile(t))
	require.NoError(t, err)

	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "doc.pdf", doc.Name)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "page one text", doc.Pages[0].Text)
	assert.Equal(t, 3, doc.Pages[2].Number)
	assert.Equal(t, "page three text", doc.Pages[2].Text)
}

func TestLoad_SkipsBlankPagesKeepsNumbers(t *testing.T) {
	runner := &mockRunner{output: []byte("first\f\f   \ffourth\f")}
	loader := New(WithRunner(runner))

	doc, err := loader.Load(context.Background(), tempFile(t))
	require.NoError(t, err)

	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, 4, doc.Pages[1].Number)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := New(WithRunner(&mockRunner{output: []byte("unused")}))

	doc, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestLoad_ExtractionFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	loader := New(WithRunner(runner))

	doc, err := loader.Load(context.Background(), tempFile(t))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestLoad_NoExtractableText(t *testing.T) {
	runner := &mockRunner{output: []byte("\f  \f\n\f")}
	loader := New(WithRunner(runner))

	doc, err := loader.Load(context.Background(), tempFile(t))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
