package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thebraudalf/fnb-docbot/config"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/chunker"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/embedding"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/extractor"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/store"
	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

type ingestFixture struct {
	uc        *IngestUseCase
	store     *store.FlatStore
	embedder  *embedding.MockEmbedder
	uploadDir string
}

func newIngestFixture(t *testing.T, size, overlap int) *ingestFixture {
	t.Helper()

	chk, err := chunker.NewWindowChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}
	embedder := embedding.NewMockEmbedder(16)
	st, err := store.Open(t.TempDir(), embedder)
	if err != nil {
		t.Fatal(err)
	}
	uploadDir := t.TempDir()

	return &ingestFixture{
		uc:        NewIngestUseCase(extractor.NewFileExtractor(), chk, st, nil, uploadDir),
		store:     st,
		embedder:  embedder,
		uploadDir: uploadDir,
	}
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestFileNotFound(t *testing.T) {
	f := newIngestFixture(t, 700, 100)

	_, err := f.uc.IngestFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestIngestFileUnsupportedFormat(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	path := writeDoc(t, t.TempDir(), "sheet.xlsx", "binary-ish")

	_, err := f.uc.IngestFile(path)
	if !domain.IsKind(err, domain.KindUnsupportedFormat) {
		t.Errorf("expected unsupported_format, got %v", err)
	}
}

func TestIngestFileEmptyDocument(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	path := writeDoc(t, t.TempDir(), "blank.txt", "  \n\t \n")

	_, err := f.uc.IngestFile(path)
	if !domain.IsKind(err, domain.KindEmptyDocument) {
		t.Errorf("expected empty_document, got %v", err)
	}
}

func TestIngestFileChunksAndArtifact(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	docDir := t.TempDir()
	content := testText(1500)
	path := writeDoc(t, docDir, "manual.txt", content)

	result, err := f.uc.IngestFile(path)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if result.ChunkCount != 3 {
		t.Errorf("expected 3 chunks for 1500 chars, got %d", result.ChunkCount)
	}
	if result.CharCount != 1500 {
		t.Errorf("expected 1500 chars, got %d", result.CharCount)
	}
	for i, m := range result.MetadataList {
		if m.Source != "manual.txt" {
			t.Errorf("metadata %d: expected source manual.txt, got %q", i, m.Source)
		}
		if m.Ordinal != i {
			t.Errorf("metadata %d: expected ordinal %d, got %d", i, i, m.Ordinal)
		}
	}

	// Per-file artifact lands next to the source.
	data, err := os.ReadFile(config.ArtifactPath(docDir))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		t.Fatalf("artifact not valid JSON: %v", err)
	}
	if len(artifact.Chunks) != 3 || len(artifact.MetadataList) != 3 {
		t.Errorf("artifact incomplete: %d chunks, %d metadata", len(artifact.Chunks), len(artifact.MetadataList))
	}
}

func TestIngestBatchRejectsTooManyFiles(t *testing.T) {
	f := newIngestFixture(t, 700, 100)

	paths := make([]string, MaxBatchFiles+1)
	for i := range paths {
		paths[i] = fmt.Sprintf("file-%d.txt", i)
	}

	_, err := f.uc.IngestBatch(context.Background(), paths)
	if !domain.IsKind(err, domain.KindInvalidConfiguration) {
		t.Errorf("expected invalid_configuration, got %v", err)
	}
}

func TestIngestBatchSumsCharCounts(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	docDir := t.TempDir()

	a := writeDoc(t, docDir, "a.txt", strings.Repeat("x", 300))
	b := writeDoc(t, docDir, "b.txt", strings.Repeat("y", 500))

	result, err := f.uc.IngestBatch(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	// Each file's own count, summed; not the last file's count repeated.
	if result.CharCount != 800 {
		t.Errorf("expected 800 total chars, got %d", result.CharCount)
	}
	if result.FileCount != 2 {
		t.Errorf("expected 2 files, got %d", result.FileCount)
	}
}

func TestIngestBatchSkipsFailingFiles(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	docDir := t.TempDir()

	good := writeDoc(t, docDir, "good.txt", "usable content for the index")
	missing := filepath.Join(docDir, "missing.txt")

	result, err := f.uc.IngestBatch(context.Background(), []string{good, missing})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	if result.FileCount != 1 {
		t.Errorf("expected 1 ingested file, got %d", result.FileCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "missing.txt") {
		t.Errorf("error should name the failing file: %q", result.Errors[0])
	}

	// The store holds only the good file's chunks.
	stats := f.store.Stats()
	if stats.TotalVectors != result.ChunksAdded {
		t.Errorf("store has %d vectors, batch reported %d added", stats.TotalVectors, result.ChunksAdded)
	}
}

func TestIngestBatchIndexesAndWritesCombinedArtifact(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	docDir := t.TempDir()

	a := writeDoc(t, docDir, "a.txt", testText(1500))
	b := writeDoc(t, docDir, "b.txt", "a short second document")

	result, err := f.uc.IngestBatch(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	if result.ChunksAdded != 4 {
		t.Errorf("expected 4 chunks added (3+1), got %d", result.ChunksAdded)
	}
	stats := f.store.Stats()
	if stats.TotalVectors != 4 || stats.TotalPassages != 4 {
		t.Errorf("expected 4/4 in store, got %d/%d", stats.TotalVectors, stats.TotalPassages)
	}

	data, err := os.ReadFile(config.ArtifactPath(f.uploadDir))
	if err != nil {
		t.Fatalf("combined artifact not written: %v", err)
	}
	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		t.Fatal(err)
	}
	if len(artifact.Chunks) != 4 {
		t.Errorf("expected 4 chunks in combined artifact, got %d", len(artifact.Chunks))
	}
	sources := map[string]bool{}
	for _, m := range artifact.MetadataList {
		sources[m.Source] = true
	}
	if !sources["a.txt"] || !sources["b.txt"] {
		t.Errorf("combined artifact missing sources: %v", sources)
	}
}

func TestIngestBatchRecordsRegistry(t *testing.T) {
	chk, err := chunker.NewWindowChunker(700, 100)
	if err != nil {
		t.Fatal(err)
	}
	embedder := embedding.NewMockEmbedder(16)
	st, err := store.Open(t.TempDir(), embedder)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := store.OpenRegistry(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	uc := NewIngestUseCase(extractor.NewFileExtractor(), chk, st, reg, t.TempDir())

	docDir := t.TempDir()
	path := writeDoc(t, docDir, "manual.txt", testText(1500))
	if _, err := uc.IngestBatch(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}

	records, err := reg.ListSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 registry record, got %d", len(records))
	}
	if records[0].Source != "manual.txt" || records[0].Chunks != 3 || records[0].Chars != 1500 {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

// End-to-end: ingest, index, and retrieve the first chunk by its exact
// text.
func TestIngestThenSearchRoundTrip(t *testing.T) {
	f := newIngestFixture(t, 700, 100)
	docDir := t.TempDir()
	ctx := context.Background()

	path := writeDoc(t, docDir, "doc.txt", testText(1500))
	result, err := f.uc.IngestBatch(ctx, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if result.ChunksAdded != 3 {
		t.Fatalf("expected 3 chunks, got %d", result.ChunksAdded)
	}

	data, err := os.ReadFile(config.ArtifactPath(f.uploadDir))
	if err != nil {
		t.Fatal(err)
	}
	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		t.Fatal(err)
	}

	firstChunk := artifact.Chunks[0]
	hits, err := f.store.Search(ctx, firstChunk, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("expected search hits")
	}
	if hits[0].Passage.Text != firstChunk {
		t.Errorf("expected the exact chunk as top hit, got %q", hits[0].Passage.Text[:20])
	}
	if hits[0].Distance != 0 {
		t.Errorf("expected zero distance for exact text, got %f", hits[0].Distance)
	}
}

// testText builds n characters with no whitespace whose content varies
// along its length, so distinct windows embed differently.
func testText(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('a' + (i/100)%26))
	}
	return sb.String()
}
