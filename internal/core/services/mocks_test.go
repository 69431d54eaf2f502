package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

// mockEmbedder returns canned vectors keyed by input text. Unknown
// texts embed to the fallback vector so tests only pin what they use.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	dims     int
	err      error
	calls    int
}

func newMockEmbedder(dims int) *mockEmbedder {
	fallback := make([]float32, dims)
	fallback[0] = 1
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: fallback,
		dims:     dims,
	}
}

func (m *mockEmbedder) set(text string, vector []float32) {
	m.vectors[text] = vector
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dims }
func (m *mockEmbedder) ModelName() string          { return "mock-embedder" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockStore is an in-memory DocumentStore that preserves insertion
// order for ListEmbeddings.
type mockStore struct {
	mu      sync.Mutex
	order   []string
	docs    map[string]*domain.Document
	embs    map[string]domain.Embedding
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		docs: make(map[string]*domain.Document),
		embs: make(map[string]domain.Embedding),
	}
}

func (m *mockStore) SaveDocumentWithEmbedding(_ context.Context, doc *domain.Document, emb domain.Embedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.docs[doc.UUID]; !ok {
		m.order = append(m.order, doc.UUID)
	}
	m.docs[doc.UUID] = doc
	m.embs[doc.UUID] = emb
	return nil
}

func (m *mockStore) GetByUUID(_ context.Context, uuid string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uuid]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", uuid, domain.ErrNotFound)
	}
	return doc, nil
}

func (m *mockStore) ListEmbeddings(_ context.Context, modelName string) ([]domain.Document, []domain.Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []domain.Document
	var embs []domain.Embedding
	for _, uuid := range m.order {
		emb := m.embs[uuid]
		if emb.ModelName != modelName {
			continue
		}
		docs = append(docs, *m.docs[uuid])
		embs = append(embs, emb)
	}
	return docs, embs, nil
}

func (m *mockStore) DeleteDocument(_ context.Context, uuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uuid]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, uuid)
	delete(m.embs, uuid)
	for i, u := range m.order {
		if u == uuid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) CountDocuments(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

func (m *mockStore) CountEmbeddings(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, emb := range m.embs {
		counts[emb.ModelName]++
	}
	return counts, nil
}

func (m *mockStore) Close() error { return nil }

// mockTextSource serves canned text per identifier.
type mockTextSource struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	calls int
}

func newMockTextSource() *mockTextSource {
	return &mockTextSource{texts: make(map[string]string)}
}

func (m *mockTextSource) Text(_ context.Context, documentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.texts[documentID]
	if !ok {
		return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return text, nil
}

// mockGenerator echoes the prompt back as two fragments.
type mockGenerator struct {
	lastContext  string
	lastQuestion string
	fragments    []string
	err          error
}

func (m *mockGenerator) Answer(_ context.Context, contextText, question string, fn func(string) error) error {
	m.lastContext = contextText
	m.lastQuestion = question
	if m.err != nil {
		return m.err
	}
	for _, f := range m.fragments {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockGenerator) ModelName() string { return "mock-generator" }
func (m *mockGenerator) Close() error      { return nil }
