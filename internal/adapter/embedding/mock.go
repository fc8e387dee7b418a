package embedding

import (
	"context"
	"sync/atomic"
)

// MockEmbedder is a deterministic embedder for tests and offline runs.
// It counts calls so tests can assert the provider was (not) consulted.
type MockEmbedder struct {
	dimension int
	calls     atomic.Int64
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed maps each text to a vector derived from its leading bytes.
// Identical inputs always produce identical vectors.
func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		for j, r := range text {
			if j >= e.dimension {
				break
			}
			vec[j] = float32(r) / 1000.0
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Calls returns how many times Embed has been invoked.
func (e *MockEmbedder) Calls() int {
	return int(e.calls.Load())
}

// Dimension returns the embedding vector dimension.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
