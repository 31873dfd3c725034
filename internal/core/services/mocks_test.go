package services

import (
	"context"
	"errors"
	"sync"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
)

// mockEmbedder produces fixed-dimension vectors derived from the text
// so that equal texts embed identically and different texts differ.
type mockEmbedder struct {
	mu         sync.Mutex
	dimensions int
	failEmbed  bool
	failBatch  bool
	batchCalls [][]string
	embedCalls []string
}

func newMockEmbedder(dimensions int) *mockEmbedder {
	return &mockEmbedder{dimensions: dimensions}
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, m.dimensions)
	for i, r := range text {
		v[i%m.dimensions] += float32(r)
	}
	// Keep at least one non-zero component for empty-ish input.
	v[0] += 1
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEmbed {
		return nil, errors.New("embedder down")
	}
	m.embedCalls = append(m.embedCalls, text)
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBatch {
		return nil, errors.New("embedder down")
	}
	m.batchCalls = append(m.batchCalls, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dimensions }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockLLM records the last prompt and returns a canned answer.
type mockLLM struct {
	mu       sync.Mutex
	answer   string
	err      error
	prompts  []string
	lastTemp float64
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)
	m.lastTemp = opts.Temperature
	return m.answer, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }

// mockDetector returns a fixed language.
type mockDetector struct {
	lang domain.Language
}

func (m *mockDetector) Detect(string) domain.Language { return m.lang }

// mockLoader returns a canned document.
type mockLoader struct {
	mu    sync.Mutex
	doc   *domain.Document
	err   error
	paths []string
}

func (m *mockLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}
