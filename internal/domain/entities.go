package domain

import "time"

// Passage is the unit of retrieval: a contiguous, possibly overlapping
// substring of a source document. Immutable once created.
type Passage struct {
	Text     string          `json:"page_content"`
	Metadata PassageMetadata `json:"metadata"`
}

// PassageMetadata locates a passage within its source document.
type PassageMetadata struct {
	Source  string `json:"source"`
	Ordinal int    `json:"chunk"`
}

// SearchHit is one nearest-neighbor result. Distance is Euclidean,
// lower means more relevant.
type SearchHit struct {
	Passage  Passage
	Distance float32
}

// StoreStats describes the current state of the vector index store.
// TotalVectors and TotalPassages are equal by construction: every
// embedded vector has exactly one passage record.
type StoreStats struct {
	TotalVectors  int    `json:"total_vectors"`
	TotalPassages int    `json:"total_documents"`
	Model         string `json:"model"`
	PersistDir    string `json:"persist_dir"`
	IndexFile     string `json:"index_file"`
	DocsFile      string `json:"docs_file"`
}

// Artifact is the durable snapshot of the most recent ingestion batch.
// It is a query-time cache, not the system of record.
type Artifact struct {
	Chunks       []string          `json:"chunks"`
	MetadataList []PassageMetadata `json:"metadata_list"`
}

// IngestResult reports what a single-file ingestion produced.
type IngestResult struct {
	Chunks       []string
	MetadataList []PassageMetadata
	ChunkCount   int
	CharCount    int
}

// BatchResult aggregates a multi-file ingestion batch.
type BatchResult struct {
	FileCount   int
	ChunksAdded int
	ChunkCount  int
	CharCount   int
	Errors      []string
}

// SourceRecord is one entry in the upload registry: a single ingested
// source file and what it contributed.
type SourceRecord struct {
	Source     string    `json:"source"`
	Chunks     int       `json:"chunks"`
	Chars      int       `json:"chars"`
	IngestedAt time.Time `json:"ingested_at"`
}
