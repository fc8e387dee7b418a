// Package usecase composes the retrieval core: ingestion turns files
// into indexed passages, query turns questions into grounded answers.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thebraudalf/fnb-docbot/config"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/chunker"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/store"
	"github.com/thebraudalf/fnb-docbot/internal/domain"
	"github.com/thebraudalf/fnb-docbot/internal/port"
)

// MaxBatchFiles caps how many files one ingestion batch accepts.
const MaxBatchFiles = 10

// IngestUseCase turns uploaded files into chunks, indexes them, and
// maintains the ingestion artifact and upload registry.
type IngestUseCase struct {
	extractor port.Extractor
	chunker   *chunker.WindowChunker
	store     port.VectorStore
	registry  *store.Registry
	uploadDir string
}

// NewIngestUseCase creates an ingestion pipeline. registry may be nil
// when no upload ledger is wanted (CLI one-shot runs).
func NewIngestUseCase(
	extractor port.Extractor,
	chk *chunker.WindowChunker,
	st port.VectorStore,
	registry *store.Registry,
	uploadDir string,
) *IngestUseCase {
	return &IngestUseCase{
		extractor: extractor,
		chunker:   chk,
		store:     st,
		registry:  registry,
		uploadDir: uploadDir,
	}
}

// SupportedExtensions reports which file extensions the pipeline can
// ingest.
func (u *IngestUseCase) SupportedExtensions() []string {
	return u.extractor.SupportedExtensions()
}

// IngestFile extracts, chunks and describes a single file. As a side
// effect it writes that file's ingestion artifact next to the source.
// The store is not touched; IngestBatch owns indexing.
func (u *IngestUseCase) IngestFile(path string) (*domain.IngestResult, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, domain.E(domain.KindNotFound, "file not found: %s", path)
		}
		return nil, err
	}

	text, err := u.extractor.Extract(path)
	if err != nil {
		if domain.KindOf(err) == domain.KindUnsupportedFormat {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindExtractionFailed, err, "failed to extract text from %s", path)
	}

	if chunker.Normalize(text) == "" {
		return nil, domain.E(domain.KindEmptyDocument, "extracted text is empty: %s", path)
	}

	chunks := u.chunker.Split(text)
	metadata := make([]domain.PassageMetadata, len(chunks))
	for i := range chunks {
		metadata[i] = domain.PassageMetadata{
			Source:  filepath.Base(path),
			Ordinal: i,
		}
	}

	artifact := domain.Artifact{Chunks: chunks, MetadataList: metadata}
	if err := writeArtifact(config.ArtifactPath(filepath.Dir(path)), artifact); err != nil {
		return nil, err
	}

	return &domain.IngestResult{
		Chunks:       chunks,
		MetadataList: metadata,
		ChunkCount:   len(chunks),
		CharCount:    len(text),
	}, nil
}

// IngestBatch ingests up to MaxBatchFiles files: per-file extraction
// failures are collected and skipped, the surviving chunks are added
// to the store in one batch, and the combined artifact is written to
// the upload directory. Character counts are summed across files.
func (u *IngestUseCase) IngestBatch(ctx context.Context, paths []string) (*domain.BatchResult, error) {
	if len(paths) == 0 {
		return nil, domain.E(domain.KindInvalidConfiguration, "no files to ingest")
	}
	if len(paths) > MaxBatchFiles {
		return nil, domain.E(domain.KindInvalidConfiguration,
			"too many files: %d (maximum %d per batch)", len(paths), MaxBatchFiles)
	}

	result := &domain.BatchResult{}
	var allChunks []string
	var allMetadata []domain.PassageMetadata

	type ingested struct {
		source string
		chunks int
		chars  int
	}
	var sources []ingested

	for _, path := range paths {
		fileResult, err := u.IngestFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}

		allChunks = append(allChunks, fileResult.Chunks...)
		allMetadata = append(allMetadata, fileResult.MetadataList...)
		result.FileCount++
		result.CharCount += fileResult.CharCount
		sources = append(sources, ingested{
			source: filepath.Base(path),
			chunks: fileResult.ChunkCount,
			chars:  fileResult.CharCount,
		})
	}

	result.ChunkCount = len(allChunks)

	added, err := u.store.Add(ctx, allChunks, allMetadata)
	if err != nil {
		return nil, fmt.Errorf("failed to index batch: %w", err)
	}
	result.ChunksAdded = added

	if len(allChunks) > 0 {
		artifact := domain.Artifact{Chunks: allChunks, MetadataList: allMetadata}
		if err := writeArtifact(config.ArtifactPath(u.uploadDir), artifact); err != nil {
			return nil, err
		}
	}

	if u.registry != nil {
		now := time.Now().UTC()
		for _, s := range sources {
			rec := domain.SourceRecord{
				Source:     s.source,
				Chunks:     s.chunks,
				Chars:      s.chars,
				IngestedAt: now,
			}
			if err := u.registry.PutSource(rec); err != nil {
				return nil, domain.Wrap(domain.KindPersistenceFailed, err, "failed to record source %s", s.source)
			}
		}
	}

	return result, nil
}

// writeArtifact persists an ingestion artifact as JSON.
func writeArtifact(path string, artifact domain.Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to encode artifact")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return domain.Wrap(domain.KindPersistenceFailed, err, "failed to write artifact %s", path)
	}
	return nil
}
