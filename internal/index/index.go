// Package index provides an in-memory vector index over embedded
// document chunks with exact brute-force cosine similarity search.
//
// A per-user corpus is a single document's worth of chunks, so an
// exact scan is both simpler and more accurate than an approximate
// nearest-neighbour structure.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/retolabs/docqa/internal/core/domain"
)

// DefaultTopK is the default number of chunks returned by Search.
const DefaultTopK = 4

// Result is a single similarity search hit.
type Result struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the cosine similarity to the query vector.
	Score float64
}

// Index is an ordered collection of embedded chunks supporting
// nearest-neighbour retrieval. It is owned by exactly one user at a
// time and is immutable after Build.
type Index struct {
	dimensions int
	chunks     []domain.Chunk
}

// Build constructs an index from embedded chunks. Every chunk must
// carry an embedding of the given dimension.
func Build(dimensions int, chunks []domain.Chunk) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("index: invalid dimensions %d", dimensions)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("index: no chunks to index")
	}
	for i := range chunks {
		if len(chunks[i].Embedding) != dimensions {
			return nil, fmt.Errorf("index: chunk %d has %d dimensions, want %d",
				i, len(chunks[i].Embedding), dimensions)
		}
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return &Index{dimensions: dimensions, chunks: out}, nil
}

// Dimensions returns the embedding vector size.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int {
	return len(x.chunks)
}

// Chunks returns the indexed chunks in document order.
func (x *Index) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(x.chunks))
	copy(out, x.chunks)
	return out
}

// Search returns the k most similar chunks to the query vector,
// most similar first. Ties keep document order. k defaults to
// DefaultTopK when non-positive.
func (x *Index) Search(query []float32, k int) []Result {
	if k <= 0 {
		k = DefaultTopK
	}
	results := make([]Result, 0, len(x.chunks))
	for _, ch := range x.chunks {
		results = append(results, Result{
			Chunk: ch,
			Score: CosineSimilarity(query, ch.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
