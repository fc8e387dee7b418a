package port

import (
	"context"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

// VectorStore owns the nearest-neighbor index and its parallel passage
// list. Implementations keep the two in lockstep across every mutation
// and every persistence round-trip.
type VectorStore interface {
	// Add embeds the chunks in one batched call and appends vectors and
	// passages in order. Returns the number of chunks added. An empty
	// batch is a no-op that performs no I/O.
	Add(ctx context.Context, chunks []string, metadata []domain.PassageMetadata) (int, error)

	// Search returns up to topK passages ordered by ascending distance.
	// An empty index yields an empty result without an embedding call.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error)

	// Reset discards all persisted and in-memory state and persists a
	// known-good empty state. Idempotent.
	Reset() error

	// Stats returns current counts and storage locations.
	Stats() domain.StoreStats

	Close() error
}
