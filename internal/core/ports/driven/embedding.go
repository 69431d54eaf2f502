package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations talk to a remote inference endpoint and are expected
// to absorb transient failures (model warm-up, rate limiting) with
// bounded retries before surfacing domain.ErrEmbeddingUnavailable.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Result order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// This is fixed per model and must match stored embeddings.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
