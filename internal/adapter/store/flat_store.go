// Package store owns the nearest-neighbor index, its parallel passage
// list, and the durable two-file layout that backs them.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/thebraudalf/fnb-docbot/config"
	"github.com/thebraudalf/fnb-docbot/internal/domain"
	"github.com/thebraudalf/fnb-docbot/internal/port"
)

// FlatStore keeps all vectors in memory and searches them exhaustively
// by Euclidean distance. State is persisted as two files in one
// directory: a gob-encoded index file and a JSON passage-metadata file,
// always written together. Brute-force search is exact; an ANN index
// can replace it if the corpus outgrows a single process.
type FlatStore struct {
	mu        sync.RWMutex
	embedder  port.Embedder
	dimension int
	dir       string
	indexPath string
	docsPath  string

	vectors  [][]float32
	passages []domain.Passage
}

// persistedIndex is the on-disk form of the vector index.
type persistedIndex struct {
	Dimension int
	Vectors   [][]float32
}

// Open restores the store from dir, or initializes an empty one if no
// persisted state exists. The embedder fixes the store's dimension for
// its whole lifetime.
func Open(dir string, embedder port.Embedder) (*FlatStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.Wrap(domain.KindPersistenceFailed, err, "failed to create store directory %s", dir)
	}

	s := &FlatStore{
		embedder:  embedder,
		dimension: embedder.Dimension(),
		dir:       dir,
		indexPath: config.IndexFilePath(dir),
		docsPath:  config.DocsFilePath(dir),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads both persisted resources. A missing file means an empty
// resource; a mismatch between the two is surfaced, not repaired.
func (s *FlatStore) load() error {
	if data, err := os.ReadFile(s.indexPath); err == nil {
		var idx persistedIndex
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&idx); err != nil {
			return domain.Wrap(domain.KindPersistenceFailed, err, "failed to decode index file %s", s.indexPath)
		}
		if idx.Dimension != s.dimension {
			return domain.E(domain.KindPersistenceFailed,
				"persisted index dimension %d does not match embedder dimension %d", idx.Dimension, s.dimension)
		}
		s.vectors = idx.Vectors
	} else if !os.IsNotExist(err) {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to read index file %s", s.indexPath)
	}

	if data, err := os.ReadFile(s.docsPath); err == nil {
		if err := json.Unmarshal(data, &s.passages); err != nil {
			return domain.Wrap(domain.KindPersistenceFailed, err, "failed to decode passage file %s", s.docsPath)
		}
	} else if !os.IsNotExist(err) {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to read passage file %s", s.docsPath)
	}

	if len(s.vectors) != len(s.passages) {
		return domain.E(domain.KindPersistenceFailed,
			"persisted state is inconsistent: %d vectors vs %d passages (reset the store to recover)",
			len(s.vectors), len(s.passages))
	}
	return nil
}

// Add embeds chunks in one batched call and appends vectors and
// passages in lockstep, then persists both resources. An empty batch
// returns 0 without touching disk or the embedding provider. If
// persistence fails the in-memory pair is still consistent; the error
// reports that durability was not achieved.
func (s *FlatStore) Add(ctx context.Context, chunks []string, metadata []domain.PassageMetadata) (int, error) {
	if len(chunks) != len(metadata) {
		return 0, domain.E(domain.KindInvalidConfiguration,
			"chunk/metadata length mismatch: %d vs %d", len(chunks), len(metadata))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, vec := range vectors {
		if len(vec) != s.dimension {
			return 0, fmt.Errorf("vector %d has dimension %d, store requires %d", i, len(vec), s.dimension)
		}
	}

	s.vectors = append(s.vectors, vectors...)
	for i, text := range chunks {
		s.passages = append(s.passages, domain.Passage{Text: text, Metadata: metadata[i]})
	}

	if err := s.persistLocked(); err != nil {
		return len(chunks), err
	}
	return len(chunks), nil
}

// Search embeds the query and returns up to topK passages ordered by
// ascending Euclidean distance. Duplicate index positions are collapsed
// to their first occurrence; out-of-range positions are dropped.
func (s *FlatStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 {
		return nil, nil
	}

	embedded, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embedded) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	qvec := embedded[0]

	type candidate struct {
		pos  int
		dist float32
	}
	candidates := make([]candidate, 0, len(s.vectors))
	for i, vec := range s.vectors {
		candidates = append(candidates, candidate{pos: i, dist: euclidean(qvec, vec)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	seen := make(map[int]struct{}, topK)
	hits := make([]domain.SearchHit, 0, topK)
	for _, c := range candidates[:topK] {
		if c.pos < 0 || c.pos >= len(s.passages) {
			continue
		}
		if _, dup := seen[c.pos]; dup {
			continue
		}
		seen[c.pos] = struct{}{}
		hits = append(hits, domain.SearchHit{Passage: s.passages[c.pos], Distance: c.dist})
	}
	return hits, nil
}

// Reset discards all persisted and in-memory state and writes a
// known-good empty state. Calling it on an empty store is a valid
// no-op that still rewrites the persisted files.
func (s *FlatStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.indexPath, s.docsPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return domain.Wrap(domain.KindPersistenceFailed, err, "failed to remove %s", path)
		}
	}

	s.vectors = nil
	s.passages = nil
	return s.persistLocked()
}

// Stats returns current counts and storage locations. TotalVectors
// always equals TotalPassages.
func (s *FlatStore) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.StoreStats{
		TotalVectors:  len(s.vectors),
		TotalPassages: len(s.passages),
		Model:         s.embedder.ModelName(),
		PersistDir:    s.dir,
		IndexFile:     s.indexPath,
		DocsFile:      s.docsPath,
	}
}

// Close releases the store. All writes happen eagerly on mutation, so
// there is nothing to flush.
func (s *FlatStore) Close() error {
	return nil
}

// persistLocked writes the index and passage files. The caller holds
// the write lock. The two writes are not transactional: a crash between
// them leaves the files out of step, which Open reports on next start.
func (s *FlatStore) persistLocked() error {
	var buf bytes.Buffer
	idx := persistedIndex{Dimension: s.dimension, Vectors: s.vectors}
	if err := gob.NewEncoder(&buf).Encode(idx); err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to encode index")
	}
	if err := os.WriteFile(s.indexPath, buf.Bytes(), 0644); err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to write index file %s", s.indexPath)
	}

	passages := s.passages
	if passages == nil {
		passages = []domain.Passage{}
	}
	data, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to encode passages")
	}
	if err := os.WriteFile(s.docsPath, data, 0644); err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to write passage file %s", s.docsPath)
	}
	return nil
}

// euclidean computes the L2 distance between two vectors.
func euclidean(a, b []float32) float32 {
	if len(a) != len(b) {
		return float32(math.Inf(1))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
