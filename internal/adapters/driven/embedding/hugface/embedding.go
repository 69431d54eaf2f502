// Package hugface provides an embedding service adapter for the
// Hugging Face Inference API.
package hugface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout = 60 * time.Second

	// DefaultMaxAttempts bounds retries per request, including the
	// initial attempt.
	DefaultMaxAttempts = 3

	// DefaultRequestsPerSecond throttles outbound inference calls so
	// batch embedding stays under the free-tier rate limit.
	DefaultRequestsPerSecond = 5

	// modelLoadingWait is the base wait applied when the API reports
	// the model is still loading (503). The wait grows linearly per
	// attempt, mirroring the estimated warm-up time the API suggests.
	modelLoadingWait = 20 * time.Second

	// backoffBase is the first exponential backoff step for rate
	// limiting and transient server errors.
	backoffBase = time.Second
)

// Model dimensions for common sentence-transformers models.
var modelDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2":  384,
	"sentence-transformers/all-MiniLM-L12-v2": 384,
	"sentence-transformers/all-mpnet-base-v2": 768,
	"BAAI/bge-small-en-v1.5":                  384,
	"BAAI/bge-base-en-v1.5":                   768,
}

// Config holds configuration for the Hugging Face embedding service.
type Config struct {
	// APIKey is the Hugging Face API token (required).
	APIKey string

	// BaseURL is the feature-extraction pipeline URL without the model
	// suffix. Can be changed for a self-hosted inference endpoint.
	BaseURL string

	// Model is the embedding model to use (default: all-MiniLM-L6-v2).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxAttempts bounds retries per request (default: 3).
	MaxAttempts int

	// RequestsPerSecond throttles outbound calls (default: 5).
	RequestsPerSecond float64

	// Dimensions overrides the known dimension for the model. Required
	// for models not in the built-in table.
	Dimensions int

	// ZeroVectorFallback makes SafeEmbed return a zero vector instead
	// of an error when the API stays unavailable after all retries.
	ZeroVectorFallback bool
}

// EmbeddingService generates embeddings using the Hugging Face
// Inference API. Transient failures are retried: a loading model (503)
// waits out the warm-up, rate limiting and server errors back off
// exponentially. After the retry budget is spent the error wraps
// domain.ErrEmbeddingUnavailable.
type EmbeddingService struct {
	client       *http.Client
	limiter      *rate.Limiter
	baseURL      string
	apiKey       string
	model        string
	dimensions   int
	maxAttempts  int
	zeroFallback bool

	// Wait bases, held as fields so tests can shorten them.
	loadingWait time.Duration
	backoff     time.Duration
}

// embeddingRequest is the feature-extraction request format.
type embeddingRequest struct {
	Inputs []string `json:"inputs"`
}

// apiError is the error envelope the Inference API returns alongside
// non-200 statuses.
type apiError struct {
	Error         json.RawMessage `json:"error"`
	EstimatedTime float64         `json:"estimated_time"`
}

// NewEmbeddingService creates a new Hugging Face embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hugface: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			return nil, fmt.Errorf("hugface: unknown dimensions for model %s, set Dimensions explicitly", cfg.Model)
		}
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		dimensions:   dimensions,
		maxAttempts:  cfg.MaxAttempts,
		zeroFallback: cfg.ZeroVectorFallback,
		loadingWait:  modelLoadingWait,
		backoff:      backoffBase,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("hugface: no embedding returned")
	}
	return embeddings[0], nil
}

// SafeEmbed behaves like Embed but, when configured with
// ZeroVectorFallback, degrades to an all-zero vector if the API stays
// unavailable after retries. Zero vectors score 0 against everything,
// so degraded documents never rank.
func (s *EmbeddingService) SafeEmbed(ctx context.Context, text string) ([]float32, error) {
	vector, err := s.Embed(ctx, text)
	if err == nil {
		return vector, nil
	}
	if s.zeroFallback && ctx.Err() == nil {
		logger.Warn("Embedding unavailable, falling back to zero vector: %v", err)
		return make([]float32, s.dimensions), nil
	}
	return nil, err
}

// EmbedBatch generates embeddings for multiple texts.
// Result order matches input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vectors, retry, err := s.post(ctx, body, len(texts))
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if retry == noRetry || attempt == s.maxAttempts {
			break
		}

		// A loading model waits out the warm-up, growing linearly per
		// attempt; everything else backs off exponentially.
		wait := s.backoff << (attempt - 1)
		if retry == retryLoading {
			wait = s.loadingWait * time.Duration(attempt)
		}

		logger.Debug("Embedding attempt %d/%d failed, retrying in %s: %v",
			attempt, s.maxAttempts, wait, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("hugface: %w: %v", domain.ErrEmbeddingUnavailable, lastErr)
}

// retryClass tells the retry loop how to wait after a failed attempt.
type retryClass int

const (
	noRetry retryClass = iota
	retryBackoff
	retryLoading
)

// post performs one API call and classifies any failure for the retry
// loop.
func (s *EmbeddingService) post(ctx context.Context, body []byte, n int) ([][]float32, retryClass, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/"+s.model,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, noRetry, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		// Network errors are worth one more try.
		return nil, retryBackoff, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retryBackoff, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		vectors, err := parseEmbeddings(respBody, n)
		if err != nil {
			return nil, noRetry, err
		}
		return vectors, noRetry, nil

	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, retryLoading, fmt.Errorf("model loading (status 503): %s", apiMessage(respBody))

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retryBackoff, fmt.Errorf("status %d: %s", resp.StatusCode, apiMessage(respBody))

	default:
		return nil, noRetry, fmt.Errorf("status %d: %s", resp.StatusCode, apiMessage(respBody))
	}
}

// parseEmbeddings normalises the shapes the feature-extraction
// pipeline is known to return: a flat vector for a single input, a
// matrix for batch input, or a matrix wrapped in an "embeddings" key
// on some deployments.
func parseEmbeddings(body []byte, n int) ([][]float32, error) {
	var matrix [][]float32
	if err := json.Unmarshal(body, &matrix); err == nil {
		return checkCount(matrix, n)
	}

	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil {
		return checkCount([][]float32{flat}, n)
	}

	var wrapped struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Embeddings != nil {
		return checkCount(wrapped.Embeddings, n)
	}

	return nil, fmt.Errorf("unrecognised embedding response shape")
}

func checkCount(vectors [][]float32, n int) ([][]float32, error) {
	if len(vectors) != n {
		return nil, fmt.Errorf("expected %d embeddings, got %d", n, len(vectors))
	}
	return vectors, nil
}

// apiMessage extracts the error message from an API error envelope,
// falling back to the raw body.
func apiMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && len(e.Error) > 0 {
		return string(e.Error)
	}
	return string(body)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the endpoint is reachable by embedding a short probe
// text without retries.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	body, err := json.Marshal(embeddingRequest{Inputs: []string{"ping"}})
	if err != nil {
		return fmt.Errorf("hugface: marshal ping: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err = s.post(ctx, body, 1)
	if err != nil {
		return fmt.Errorf("hugface: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
