package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atticus-labs/lexrag/internal/cluster"
	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
	"github.com/atticus-labs/lexrag/internal/logger"
	"github.com/atticus-labs/lexrag/internal/vectormath"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchLimit is the result count used when k is not positive.
const DefaultSearchLimit = 5

// DefaultRecommendMinSimilarity filters out barely related documents
// from recommendations.
const DefaultRecommendMinSimilarity = 0.1

// SearchService provides document-level semantic search over the
// persistent store. The search is an exact linear scan: every stored
// embedding for the configured model is scored by cosine similarity.
// That is acceptable for hundreds to low thousands of documents; an
// approximate index can replace the scan behind the same interface.
type SearchService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	clusters *cluster.Engine
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.DocumentStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		clusters: cluster.New(cluster.Config{}),
	}
}

// UpsertDocument embeds text and stores it as the document's summary
// together with the embedding, atomically. Re-upserting a uuid replaces
// the document fields and supersedes the prior embedding for the
// configured model.
func (s *SearchService) UpsertDocument(
	ctx context.Context, uuid, text string, opts driving.UpsertOptions,
) error {
	if strings.TrimSpace(uuid) == "" || strings.TrimSpace(text) == "" {
		return fmt.Errorf("upsert document: uuid and text are required: %w", domain.ErrInvalidInput)
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", uuid, err)
	}

	doc := &domain.Document{
		UUID:       uuid,
		Filename:   opts.Filename,
		Petitioner: opts.Petitioner,
		Respondent: opts.Respondent,
		Summary:    text,
		Metadata:   opts.Metadata,
	}
	emb := domain.Embedding{
		DocumentUUID: uuid,
		ModelName:    s.embedder.ModelName(),
		Dimension:    len(vector),
		Vector:       vector,
	}

	if err := s.store.SaveDocumentWithEmbedding(ctx, doc, emb); err != nil {
		return fmt.Errorf("save document %s: %w", uuid, err)
	}

	logger.Debug("Upserted document %s (%d dims)", uuid, len(vector))
	return nil
}

// SimilaritySearch embeds the query and scores it against every stored
// embedding for the configured model, returning up to k results with
// similarity >= minSimilarity in descending order. Ties keep stored
// order. Returns domain.ErrEmptyIndex when nothing is indexed for the
// model.
func (s *SearchService) SimilaritySearch(
	ctx context.Context, query string, k int, minSimilarity float64,
) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		k = DefaultSearchLimit
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, embs, err := s.store.ListEmbeddings(ctx, s.embedder.ModelName())
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("model %s: %w", s.embedder.ModelName(), domain.ErrEmptyIndex)
	}

	logger.Debug("Similarity search: scoring %d embeddings", len(embs))

	results := make([]domain.ScoredDocument, 0, len(embs))
	for i, emb := range embs {
		if emb.Dimension != len(emb.Vector) || emb.Dimension != s.embedder.Dimensions() {
			return nil, fmt.Errorf("document %s stored %d dims, model %s expects %d: %w",
				emb.DocumentUUID, len(emb.Vector), s.embedder.ModelName(),
				s.embedder.Dimensions(), domain.ErrInvalidDimension)
		}

		similarity := vectormath.Cosine(queryVector, emb.Vector)
		if similarity >= minSimilarity {
			results = append(results, domain.ScoredDocument{
				Document:   docs[i],
				Similarity: similarity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("Similarity search: %d qualifying results", len(results))
	return results, nil
}

// RecommendSimilar searches with the referenced document's stored
// summary and filters the reference itself from the results.
func (s *SearchService) RecommendSimilar(
	ctx context.Context, uuid string, k int,
) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		k = DefaultSearchLimit
	}

	doc, err := s.store.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("get reference document %s: %w", uuid, err)
	}
	if strings.TrimSpace(doc.Summary) == "" {
		return nil, fmt.Errorf("document %s has no summary to compare: %w", uuid, domain.ErrNotFound)
	}

	// Request one extra result: the reference document matches itself.
	similar, err := s.SimilaritySearch(ctx, doc.Summary, k+1, DefaultRecommendMinSimilarity)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScoredDocument, 0, k)
	for _, r := range similar {
		if r.Document.UUID == uuid {
			continue
		}
		results = append(results, r)
		if len(results) == k {
			break
		}
	}

	return results, nil
}

// Topics clusters the stored summary embeddings and returns the
// resulting document groups, largest first. maxTopics caps the number
// of clusters considered; non-positive values use the engine default.
func (s *SearchService) Topics(ctx context.Context, maxTopics int) ([]driving.TopicGroup, error) {
	docs, embs, err := s.store.ListEmbeddings(ctx, s.embedder.ModelName())
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("model %s: %w", s.embedder.ModelName(), domain.ErrEmptyIndex)
	}

	vectors := make([][]float32, len(embs))
	for i, emb := range embs {
		if emb.Dimension != len(emb.Vector) {
			return nil, fmt.Errorf("document %s stored %d dims, declared %d: %w",
				emb.DocumentUUID, len(emb.Vector), emb.Dimension, domain.ErrInvalidDimension)
		}
		vectors[i] = emb.Vector
	}

	engine := s.clusters
	if maxTopics > 0 {
		engine = cluster.New(cluster.Config{MaxClusters: maxTopics})
	}

	labels := engine.Assign(vectors)
	logger.Debug("Topics: clustered %d documents", len(labels))

	byLabel := make(map[int][]domain.Document)
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], docs[i])
	}

	groups := make([]driving.TopicGroup, 0, len(byLabel))
	for label, members := range byLabel {
		groups = append(groups, driving.TopicGroup{Label: label, Documents: members})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Documents) != len(groups[j].Documents) {
			return len(groups[i].Documents) > len(groups[j].Documents)
		}
		return groups[i].Label < groups[j].Label
	})

	return groups, nil
}

// GetByUUID retrieves a stored document.
func (s *SearchService) GetByUUID(ctx context.Context, uuid string) (*domain.Document, error) {
	return s.store.GetByUUID(ctx, uuid)
}

// DeleteDocument removes a document and its embeddings.
func (s *SearchService) DeleteDocument(ctx context.Context, uuid string) error {
	if err := s.store.DeleteDocument(ctx, uuid); err != nil {
		return fmt.Errorf("delete document %s: %w", uuid, err)
	}
	logger.Debug("Deleted document %s", uuid)
	return nil
}

// Stats reports document and embedding counts per model.
func (s *SearchService) Stats(ctx context.Context) (driving.StoreStats, error) {
	docs, err := s.store.CountDocuments(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("count documents: %w", err)
	}

	byModel, err := s.store.CountEmbeddings(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("count embeddings: %w", err)
	}

	total := 0
	for _, n := range byModel {
		total += n
	}

	return driving.StoreStats{
		TotalDocuments:  docs,
		TotalEmbeddings: total,
		ByModel:         byModel,
	}, nil
}
