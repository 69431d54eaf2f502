package hugface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

func newTestService(t *testing.T, handler http.Handler, cfg Config) *EmbeddingService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.APIKey = "test-token"
	cfg.BaseURL = server.URL
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1000 // no throttling in tests
	}

	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)

	// Keep retry tests fast.
	svc.loadingWait = time.Millisecond
	svc.backoff = time.Millisecond

	return svc
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingServiceUnknownModelNeedsDimensions(t *testing.T) {
	_, err := NewEmbeddingService(Config{APIKey: "k", Model: "custom/never-heard-of-it"})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "custom/never-heard-of-it", Dimensions: 512})
	require.NoError(t, err)
	assert.Equal(t, 512, svc.Dimensions())
}

func TestNewEmbeddingServiceDefaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 384, svc.Dimensions())
	assert.Equal(t, DefaultMaxAttempts, svc.maxAttempts)
}

func TestEmbedBatchSendsBearerTokenAndInputs(t *testing.T) {
	var gotAuth string
	var gotInputs []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInputs = req.Inputs

		out := make([][]float32, len(req.Inputs))
		for i := range out {
			out[i] = []float32{float32(i), 1}
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	})
	svc := newTestService(t, handler, Config{Dimensions: 2})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, []string{"one", "two"}, gotInputs)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0, 1}, vectors[0])
	assert.Equal(t, []float32{1, 1}, vectors[1])
}

func TestEmbedUnwrapsSingleVector(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Single input may come back as a flat vector.
		require.NoError(t, json.NewEncoder(w).Encode([]float32{0.1, 0.2, 0.3}))
	})
	svc := newTestService(t, handler, Config{Dimensions: 3})

	vector, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	svc := newTestService(t, http.NotFoundHandler(), Config{Dimensions: 2})

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatchRetriesModelLoading(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20.0}`))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode([][]float32{{1, 2}}))
	})
	svc := newTestService(t, handler, Config{Dimensions: 2})

	vector, err := svc.Embed(context.Background(), "warm me up")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vector)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedBatchRetriesRateLimitThenFails(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	svc := newTestService(t, handler, Config{Dimensions: 2, MaxAttempts: 3})

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedBatchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	})
	svc := newTestService(t, handler, Config{Dimensions: 2, MaxAttempts: 3})

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedBatchHonoursContextCancellation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	svc := newTestService(t, handler, Config{Dimensions: 2})
	svc.loadingWait = time.Minute // cancellation must cut the wait short

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSafeEmbedZeroVectorFallback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, handler, Config{Dimensions: 3, MaxAttempts: 1, ZeroVectorFallback: true})

	vector, err := svc.SafeEmbed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, vector)
}

func TestSafeEmbedWithoutFallbackPropagatesError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, handler, Config{Dimensions: 3, MaxAttempts: 1})

	_, err := svc.SafeEmbed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestParseEmbeddingsShapes(t *testing.T) {
	t.Run("matrix", func(t *testing.T) {
		vectors, err := parseEmbeddings([]byte(`[[1,2],[3,4]]`), 2)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, vectors)
	})

	t.Run("flat vector", func(t *testing.T) {
		vectors, err := parseEmbeddings([]byte(`[1,2,3]`), 1)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2, 3}}, vectors)
	})

	t.Run("wrapped", func(t *testing.T) {
		vectors, err := parseEmbeddings([]byte(`{"embeddings":[[5,6]]}`), 1)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{5, 6}}, vectors)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := parseEmbeddings([]byte(`[[1,2]]`), 2)
		assert.Error(t, err)
	})

	t.Run("unrecognised shape", func(t *testing.T) {
		_, err := parseEmbeddings([]byte(`{"data":"nope"}`), 1)
		assert.Error(t, err)
	})
}

func TestPingProbesEndpoint(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]float32{0.5}))
	})
	svc := newTestService(t, handler, Config{Dimensions: 1})

	assert.NoError(t, svc.Ping(context.Background()))
}
