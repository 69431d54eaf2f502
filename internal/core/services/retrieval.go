package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/atticus-labs/lexrag/internal/chunker"
	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
	"github.com/atticus-labs/lexrag/internal/logger"
	"github.com/atticus-labs/lexrag/internal/vectormath"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultContextChunks is the number of chunks assembled into the
// generation context when topN is not positive.
const DefaultContextChunks = 3

// RetrievalService prepares documents for chunk-level question
// answering. Preparation extracts a document's text, splits it into
// token-budgeted chunks and embeds them; the resulting session is held
// in an LRU cache so repeated questions against one document reuse the
// chunk vectors.
type RetrievalService struct {
	texts     driven.TextSource
	embedder  driven.EmbeddingService
	generator driven.GenerationService
	sessions  *SessionStore
	maxTokens int
}

// NewRetrievalService creates a retrieval service. A non-positive
// maxTokens falls back to the chunker default budget.
func NewRetrievalService(
	texts driven.TextSource,
	embedder driven.EmbeddingService,
	generator driven.GenerationService,
	sessions *SessionStore,
	maxTokens int,
) *RetrievalService {
	if maxTokens <= 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	return &RetrievalService{
		texts:     texts,
		embedder:  embedder,
		generator: generator,
		sessions:  sessions,
		maxTokens: maxTokens,
	}
}

// Prepare extracts, chunks and embeds the document's text and caches
// the session. A failed preparation leaves any previously cached
// session for the identifier intact; concurrent calls for one
// identifier share a single computation.
func (s *RetrievalService) Prepare(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("prepare: document identifier is required: %w", domain.ErrInvalidInput)
	}

	return s.sessions.prepareOnce(documentID, func() (*domain.PreparedDocument, error) {
		text, err := s.texts.Text(ctx, documentID)
		if err != nil {
			return nil, fmt.Errorf("load text for %s: %w", documentID, err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("document %s has no extractable text: %w", documentID, domain.ErrInvalidInput)
		}

		chunks := chunker.Split(text, s.maxTokens)
		logger.Debug("Prepare %s: %d chunks", documentID, len(chunks))

		vectors, err := s.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("embed chunks for %s: %w", documentID, err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}

		return &domain.PreparedDocument{
			DocumentID: documentID,
			Chunks:     chunks,
			Vectors:    vectors,
			Text:       text,
		}, nil
	})
}

// AnswerContext scores the question against the prepared document's
// chunk vectors and concatenates the topN most similar chunks,
// descending by similarity, ties broken by chunk order. Returns
// domain.ErrNotPrepared when Prepare has not run for the identifier.
func (s *RetrievalService) AnswerContext(
	ctx context.Context, documentID, question string, topN int,
) (string, error) {
	if topN <= 0 {
		topN = DefaultContextChunks
	}

	session, ok := s.sessions.Get(documentID)
	if !ok {
		return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotPrepared)
	}

	questionVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	type scoredChunk struct {
		index      int
		similarity float64
	}
	scored := make([]scoredChunk, len(session.Vectors))
	for i, vec := range session.Vectors {
		scored[i] = scoredChunk{
			index:      i,
			similarity: vectormath.Cosine(questionVector, vec),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	parts := make([]string, len(scored))
	for i, c := range scored {
		parts[i] = session.Chunks[c.index]
	}
	return strings.Join(parts, " "), nil
}

// Answer assembles the generation context for the question and streams
// the model's reply to w as fragments arrive.
func (s *RetrievalService) Answer(
	ctx context.Context, documentID, question string, topN int, w io.Writer,
) error {
	contextText, err := s.AnswerContext(ctx, documentID, question, topN)
	if err != nil {
		return err
	}

	logger.Debug("Answering against %s with %d context bytes", documentID, len(contextText))

	return s.generator.Answer(ctx, contextText, question, func(fragment string) error {
		_, err := io.WriteString(w, fragment)
		return err
	})
}
