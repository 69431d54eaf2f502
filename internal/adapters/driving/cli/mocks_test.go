package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
)

// mockSearchService returns canned results for every query.
type mockSearchService struct {
	results  []domain.ScoredDocument
	document *domain.Document
	stats    driving.StoreStats
	topics   []driving.TopicGroup
	err      error

	lastQuery  string
	lastK      int
	lastUpsert string
	upserts    int
	deleted    []string
}

func (m *mockSearchService) UpsertDocument(_ context.Context, uuid string, _ string, _ driving.UpsertOptions) error {
	m.lastUpsert = uuid
	m.upserts++
	return m.err
}

func (m *mockSearchService) SimilaritySearch(_ context.Context, query string, k int, _ float64) ([]domain.ScoredDocument, error) {
	m.lastQuery = query
	m.lastK = k
	return m.results, m.err
}

func (m *mockSearchService) RecommendSimilar(_ context.Context, _ string, k int) ([]domain.ScoredDocument, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockSearchService) Topics(context.Context, int) ([]driving.TopicGroup, error) {
	return m.topics, m.err
}

func (m *mockSearchService) GetByUUID(context.Context, string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}

func (m *mockSearchService) DeleteDocument(_ context.Context, uuid string) error {
	m.deleted = append(m.deleted, uuid)
	return m.err
}

func (m *mockSearchService) Stats(context.Context) (driving.StoreStats, error) {
	return m.stats, m.err
}

// mockRetrievalService records calls and streams a fixed answer.
type mockRetrievalService struct {
	answer     string
	prepareErr error
	answerErr  error
	prepares   []string
}

func (m *mockRetrievalService) Prepare(_ context.Context, documentID string) error {
	m.prepares = append(m.prepares, documentID)
	if m.prepareErr != nil {
		return m.prepareErr
	}
	// A successful prepare makes subsequent answers succeed, like the
	// real service caching a session.
	m.answerErr = nil
	return nil
}

func (m *mockRetrievalService) AnswerContext(context.Context, string, string, int) (string, error) {
	return "context", m.answerErr
}

func (m *mockRetrievalService) Answer(_ context.Context, _, _ string, _ int, w io.Writer) error {
	if m.answerErr != nil {
		return m.answerErr
	}
	_, err := fmt.Fprint(w, m.answer)
	return err
}

// mockImportService returns fixed stats.
type mockImportService struct {
	stats domain.ImportStats
	err   error
}

func (m *mockImportService) ImportCSV(context.Context, io.Reader) (domain.ImportStats, error) {
	return m.stats, m.err
}

// setupTestServices installs mock services and returns a cleanup
// function restoring the previous ones.
func setupTestServices() func() {
	oldSearch, oldRetrieval, oldImport := searchService, retrievalService, importService

	searchService = &mockSearchService{
		results: []domain.ScoredDocument{
			{
				Document: domain.Document{
					UUID:       "doc-1",
					Filename:   "petition.pdf",
					Petitioner: "Smith",
					Respondent: "Jones",
					Summary:    "A dispute over a commercial lease.",
				},
				Similarity: 0.92,
			},
		},
	}
	retrievalService = &mockRetrievalService{answer: "The lease terminates in 2027."}
	importService = &mockImportService{stats: domain.ImportStats{Total: 3, Successful: 2, Skipped: 1}}

	return func() {
		searchService, retrievalService, importService = oldSearch, oldRetrieval, oldImport
	}
}
