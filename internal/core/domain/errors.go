package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotPrepared indicates a question was asked against a document
	// that has not been prepared for retrieval.
	ErrNotPrepared = errors.New("document not prepared")

	// ErrEmbeddingUnavailable indicates the embedding service exhausted
	// its retries. Callers may opt into a zero-vector fallback.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidDimension indicates a stored vector length mismatches
	// the configured model dimension.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrEmptyIndex indicates a similarity search was attempted with no
	// stored embeddings for the configured model.
	ErrEmptyIndex = errors.New("no embeddings stored for model")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
