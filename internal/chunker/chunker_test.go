package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retolabs/docqa/internal/core/domain"
)

func doc(pages ...string) *domain.Document {
	d := &domain.Document{Name: "test.pdf"}
	for i, text := range pages {
		d.Pages = append(d.Pages, domain.Page{Number: i + 1, Text: text})
	}
	return d
}

func contents(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.Content
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultChunkSize, s.ChunkSize())
	assert.Equal(t, DefaultOverlap, s.Overlap())
}

func TestNew_OverlapCapped(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(150))
	assert.Equal(t, 25, s.Overlap())
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := New()
	chunks := s.Split(doc("a short page of text"))

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short page of text", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "test.pdf", chunks[0].Document)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplit_EmptyDocument(t *testing.T) {
	s := New()
	assert.Empty(t, s.Split(doc("")))
	assert.Empty(t, s.Split(doc("   \n\n  ")))
}

func TestSplit_NoChunkExceedsMaxSize(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("some words that keep going and going ", 30)

	for _, ch := range s.Split(doc(text)) {
		assert.LessOrEqual(t, len(ch.Content), 50)
		assert.NotEmpty(t, ch.Content)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New(WithChunkSize(60), WithOverlap(12))
	text := "First paragraph with enough words to matter.\n\n" +
		"Second paragraph, also fairly long, spanning lines.\n" +
		"A third line inside the second paragraph for good measure."

	first := s.Split(doc(text))
	second := s.Split(doc(text))

	require.Equal(t, len(first), len(second))
	assert.Equal(t, contents(first), contents(second))
	for i := range first {
		assert.Equal(t, first[i].Page, second[i].Page)
		assert.Equal(t, first[i].Position, second[i].Position)
	}
}

func TestSplit_OrderAndPositions(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(8))
	text := "alpha section one.\n\nbeta section two follows here.\n\ngamma section three ends it."

	chunks := s.Split(doc(text))
	require.NotEmpty(t, chunks)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Position)
	}
	assert.Contains(t, chunks[0].Content, "alpha")
	assert.Contains(t, chunks[len(chunks)-1].Content, "ends it")
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(0))
	text := "short first paragraph here\n\nand a short second paragraph"

	chunks := s.Split(doc(text))
	require.Len(t, chunks, 2)
	assert.Equal(t, "short first paragraph here", chunks[0].Content)
	assert.Equal(t, "and a short second paragraph", chunks[1].Content)
}

func TestSplit_OverlapPreservesContext(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(15))
	words := []string{
		"one", "two", "three", "four", "five", "six", "seven",
		"eight", "nine", "ten", "eleven", "twelve", "thirteen",
	}
	chunks := s.Split(doc(strings.Join(words, " ")))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		cur := chunks[i].Content
		// The next chunk starts with a non-empty tail of the previous
		// one, no longer than the configured overlap.
		shared := 0
		for k := 1; k <= len(prev) && k <= len(cur); k++ {
			if prev[len(prev)-k:] == cur[:k] {
				shared = k
			}
		}
		assert.Greater(t, shared, 0,
			"chunk %d should share a boundary with chunk %d", i, i-1)
		assert.LessOrEqual(t, shared, 15)
	}
}

func TestSplit_UnbrokenTextExactOverlap(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("x", 130)

	chunks := s.Split(doc(text))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		cur := chunks[i].Content
		overlap := prev[len(prev)-10:]
		assert.True(t, strings.HasPrefix(cur, overlap),
			"chunk %d should start with the last 10 characters of chunk %d", i, i-1)
	}
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 50)
	}
}

func TestSplit_UnbrokenMultibyteText(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("書", 130)

	chunks := s.Split(doc(text))
	require.Len(t, chunks, 3)

	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Content),
			"chunk should not be cut mid-rune: %q", ch.Content)
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Content), 50)
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		overlap := string(prev[len(prev)-10:])
		assert.True(t, strings.HasPrefix(chunks[i].Content, overlap),
			"chunk %d should start with the last 10 runes of chunk %d", i, i-1)
	}
}

func TestSplit_SizeCountedInRunes(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(2))
	// Eight runes, thirty-two bytes: fits one chunk by rune count.
	text := strings.Repeat("🙂", 8)

	chunks := s.Split(doc(text))
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplit_MultibyteWordsMergedByRuneCount(t *testing.T) {
	s := New(WithChunkSize(12), WithOverlap(0))
	text := "дом кот лес мир сад"

	chunks := s.Split(doc(text))
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Content))
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Content), 12)
	}
	// Rune counting packs three words per chunk; byte counting would
	// have split after one.
	assert.Equal(t, "дом кот лес", chunks[0].Content)
}

func TestSplit_PagePropagation(t *testing.T) {
	s := New()
	chunks := s.Split(doc("page one text", "page two text", "page three text"))

	require.Len(t, chunks, 3)
	for i, ch := range chunks {
		assert.Equal(t, i+1, ch.Page)
		assert.Equal(t, i, ch.Position)
	}
}
