package driven

import (
	"context"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

// DocumentStore persists documents and their embeddings.
//
// The store guarantees a document and its embedding are never visible
// in a partially written state: SaveDocumentWithEmbedding replaces the
// document fields and the embedding for the given model in one atomic
// operation.
type DocumentStore interface {
	// SaveDocumentWithEmbedding creates or replaces a document together
	// with its embedding for emb.ModelName. Any prior embedding for the
	// same (document, model) pair is superseded.
	SaveDocumentWithEmbedding(ctx context.Context, doc *domain.Document, emb domain.Embedding) error

	// GetByUUID retrieves a document by UUID.
	// Returns domain.ErrNotFound if it does not exist.
	GetByUUID(ctx context.Context, uuid string) (*domain.Document, error)

	// ListEmbeddings returns all stored embeddings for the given model,
	// each joined with its owning document.
	ListEmbeddings(ctx context.Context, modelName string) ([]domain.Document, []domain.Embedding, error)

	// DeleteDocument removes a document and its embeddings.
	DeleteDocument(ctx context.Context, uuid string) error

	// CountDocuments returns the total number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// CountEmbeddings returns the number of embeddings per model name.
	CountEmbeddings(ctx context.Context) (map[string]int, error)

	// Close releases resources.
	Close() error
}
