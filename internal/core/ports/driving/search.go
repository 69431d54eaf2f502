package driving

import (
	"context"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

// UpsertOptions carries the optional fields of a document upsert.
type UpsertOptions struct {
	Filename   string
	Petitioner string
	Respondent string
	Metadata   map[string]any
}

// TopicGroup is a set of documents whose summary embeddings cluster
// together. Label is an opaque cluster index, stable only within a
// single Topics call.
type TopicGroup struct {
	Label     int
	Documents []domain.Document
}

// StoreStats summarises the contents of the document store.
type StoreStats struct {
	TotalDocuments  int
	TotalEmbeddings int
	ByModel         map[string]int
}

// SearchService provides document-level semantic search and
// recommendation over the persistent store.
type SearchService interface {
	// UpsertDocument embeds text and stores it as the document's summary
	// together with the embedding, atomically. An existing document with
	// the same uuid is replaced, not appended to.
	UpsertDocument(ctx context.Context, uuid, text string, opts UpsertOptions) error

	// SimilaritySearch returns up to k documents whose summary embedding
	// has cosine similarity >= minSimilarity with the query, in
	// descending similarity order.
	SimilaritySearch(ctx context.Context, query string, k int, minSimilarity float64) ([]domain.ScoredDocument, error)

	// RecommendSimilar returns up to k documents similar to the
	// referenced one, never including the reference itself.
	RecommendSimilar(ctx context.Context, uuid string, k int) ([]domain.ScoredDocument, error)

	// Topics groups the stored documents into semantic clusters by
	// their summary embeddings. The cluster count is chosen from the
	// data, capped at maxTopics.
	Topics(ctx context.Context, maxTopics int) ([]TopicGroup, error)

	// GetByUUID retrieves a stored document.
	GetByUUID(ctx context.Context, uuid string) (*domain.Document, error)

	// DeleteDocument removes a document and its embeddings. Returns
	// domain.ErrNotFound for unknown uuids.
	DeleteDocument(ctx context.Context, uuid string) error

	// Stats reports document and embedding counts.
	Stats(ctx context.Context) (StoreStats, error)
}
