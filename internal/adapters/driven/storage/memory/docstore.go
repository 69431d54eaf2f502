// Package memory provides in-memory implementations of driven port
// interfaces, used for tests and ephemeral runs where persistence is
// not needed.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Embeddings keep insertion order so linear scans are deterministic.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	embeddings map[string]map[string]domain.Embedding // uuid -> model -> embedding
	order      []string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[string]domain.Document),
		embeddings: make(map[string]map[string]domain.Embedding),
	}
}

// SaveDocumentWithEmbedding stores or replaces a document and its
// embedding for the embedding's model.
func (s *DocumentStore) SaveDocumentWithEmbedding(_ context.Context, doc *domain.Document, emb domain.Embedding) error {
	if doc.UUID == "" || doc.UUID != emb.DocumentUUID {
		return domain.ErrInvalidInput
	}
	if err := emb.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.documents[doc.UUID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
		s.order = append(s.order, doc.UUID)
	}
	doc.UpdatedAt = now

	s.documents[doc.UUID] = *doc
	if s.embeddings[doc.UUID] == nil {
		s.embeddings[doc.UUID] = make(map[string]domain.Embedding)
	}
	s.embeddings[doc.UUID][emb.ModelName] = emb
	return nil
}

// GetByUUID retrieves a document by UUID.
func (s *DocumentStore) GetByUUID(_ context.Context, uuid string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uuid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListEmbeddings returns all embeddings for the given model with their
// owning documents, in insertion order.
func (s *DocumentStore) ListEmbeddings(_ context.Context, modelName string) ([]domain.Document, []domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	var embs []domain.Embedding
	for _, uuid := range s.order {
		emb, ok := s.embeddings[uuid][modelName]
		if !ok {
			continue
		}
		docs = append(docs, s.documents[uuid])
		embs = append(embs, emb)
	}
	return docs, embs, nil
}

// DeleteDocument removes a document and its embeddings.
func (s *DocumentStore) DeleteDocument(_ context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uuid]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, uuid)
	delete(s.embeddings, uuid)
	for i, u := range s.order {
		if u == uuid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// CountDocuments returns the total number of stored documents.
func (s *DocumentStore) CountDocuments(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// CountEmbeddings returns the number of embeddings per model name.
func (s *DocumentStore) CountEmbeddings(context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, models := range s.embeddings {
		for model := range models {
			counts[model]++
		}
	}
	return counts, nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
