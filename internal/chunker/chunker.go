// Package chunker splits extracted document text into overlapping
// chunks suitable for embedding.
//
// Splitting is recursive: paragraph breaks are preferred, then line
// breaks, then spaces, always taking the largest separator that yields
// pieces at or under the configured chunk size. Consecutive chunks
// share a tail of the previous chunk to preserve cross-boundary
// context. Output is deterministic for identical input and
// configuration.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/retolabs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 200

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 20

// separators ordered largest-first.
var separators = []string{"\n\n", "\n", " "}

// Splitter splits documents into overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured maximum chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split chunks a document page by page. Chunk positions are ordinal
// across the whole document; the first chunk of the earliest text has
// position 0. No returned chunk is empty.
func (s *Splitter) Split(doc *domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0
	for _, page := range doc.Pages {
		for _, piece := range s.splitText(page.Text, separators) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Document: doc.Name,
				Page:     page.Number,
				Position: position,
				Content:  piece,
			})
			position++
		}
	}
	return chunks
}

// splitText recursively splits text on the largest usable separator,
// then greedily re-merges the pieces into chunks of at most chunkSize
// characters with an overlapping tail.
func (s *Splitter) splitText(text string, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	var rest []string
	for i, candidate := range seps {
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		// No separator left: fall back to fixed-size windows with
		// exact overlap.
		return s.hardSplit(text)
	}

	var pieces []string
	for _, part := range strings.Split(text, sep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= s.chunkSize {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, s.splitText(part, rest)...)
	}
	return s.merge(pieces, sep)
}

// merge accumulates pieces into chunks up to chunkSize, carrying over
// a tail of trailing pieces totalling at most overlap characters.
// Sizes are counted in runes, not bytes.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	joined := func(ps []string) int {
		n := 0
		for i, p := range ps {
			if i > 0 {
				n += sepLen
			}
			n += utf8.RuneCountInString(p)
		}
		return n
	}

	var out []string
	var window []string
	fresh := false

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if len(window) > 0 && joined(window)+sepLen+pieceLen > s.chunkSize {
			if fresh {
				out = append(out, strings.Join(window, sep))
				fresh = false
			}
			for len(window) > 0 &&
				(joined(window) > s.overlap || joined(window)+sepLen+pieceLen > s.chunkSize) {
				window = window[1:]
			}
		}
		window = append(window, piece)
		fresh = true
	}
	if fresh && len(window) > 0 {
		out = append(out, strings.Join(window, sep))
	}
	return out
}

// hardSplit cuts unbroken text into chunkSize windows stepping by
// chunkSize-overlap, so consecutive windows overlap exactly. Windows
// are cut at rune boundaries so multibyte text stays valid UTF-8.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
