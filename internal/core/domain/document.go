package domain

import "time"

// Document represents an ingested legal case document.
// It is the canonical record the retrieval core searches over.
type Document struct {
	// UUID is the opaque unique identifier for the document.
	UUID string

	// Filename is the original file name, when known.
	Filename string

	// Petitioner is the petitioner party name.
	Petitioner string

	// Respondent is the respondent party name.
	Respondent string

	// Summary is the canonical text embedded for document-level search.
	Summary string

	// Metadata contains arbitrary JSON-serialisable key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-embedded.
	UpdatedAt time.Time
}

// Embedding is the vector representation of a document's summary
// under a specific embedding model. A document holds at most one
// current embedding per model; a new one supersedes the old.
type Embedding struct {
	// DocumentUUID links to the owning Document.
	DocumentUUID string

	// ModelName identifies the embedding model that produced the vector.
	ModelName string

	// Dimension is the vector length. Must equal len(Vector).
	Dimension int

	// Vector is the embedding itself.
	Vector []float32
}

// Validate checks the dimension invariant.
func (e Embedding) Validate() error {
	if e.Dimension != len(e.Vector) {
		return ErrInvalidDimension
	}
	return nil
}

// Chunk is a transient bounded-size piece of a document's raw text.
// Chunks are the unit of embedding for question answering; they are
// never persisted.
type Chunk struct {
	// DocumentUUID links to the source document.
	DocumentUUID string

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the document.
	Position int
}

// ScoredDocument pairs a document with its cosine similarity to a query.
type ScoredDocument struct {
	Document   Document
	Similarity float64
}

// PreparedDocument holds the chunked and embedded state of a single
// document so repeated questions avoid re-computation. Process-lifetime,
// owned by the session store.
type PreparedDocument struct {
	// DocumentID is the identifier the session is keyed by.
	DocumentID string

	// Chunks are the document's text chunks in original order.
	Chunks []string

	// Vectors is the chunk-embedding matrix, row i for chunk i.
	Vectors [][]float32

	// Text is the raw extracted document text.
	Text string
}

// ImportStats summarises a bulk CSV import run.
type ImportStats struct {
	Total      int
	Successful int
	Failed     int
	Skipped    int
}
