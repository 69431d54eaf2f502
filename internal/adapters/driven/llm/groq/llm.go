// Package groq provides a generation service adapter using the Groq
// API, which speaks the OpenAI chat-completions wire format.
package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
)

// Ensure GenerationService implements the interfaces.
var (
	_ driven.GenerationService = (*GenerationService)(nil)
	_ driven.PromptStoreAware  = (*GenerationService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultTimeout = 120 * time.Second
)

// defaultSystemPrompt frames the assistant as a legal-document analyst
// that answers only from the supplied context. Used when no PromptStore
// is configured.
const defaultSystemPrompt = `You are a legal document assistant. Answer the question using only the provided context from the document. If the context does not contain the answer, say so plainly. Be precise and cite the relevant passage where possible.`

// Config holds configuration for the Groq generation service.
type Config struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.groq.com/openai/v1).
	BaseURL string

	// Model is the chat model to use (default: llama-3.3-70b-versatile).
	Model string

	// Timeout is the request timeout (default: 120s). It covers the
	// whole stream, not just the first byte.
	Timeout time.Duration
}

// GenerationService streams chat completions from the Groq API.
type GenerationService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// chatRequest is the chat-completions request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamChunk is one server-sent event payload of a streamed reply.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGenerationService creates a new Groq generation service.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
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

	return &GenerationService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Answer streams the generated reply for the question grounded in
// contextText, invoking fn once per text fragment in order.
func (s *GenerationService) Answer(ctx context.Context, contextText, question string, fn func(fragment string) error) error {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: s.loadSystemPrompt()},
			{Role: "user", Content: fmt.Sprintf("Context: %s\nQuestion: %s", contextText, question)},
		},
		Stream: true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("groq error (status %d)", resp.StatusCode)
		}
		return fmt.Errorf("groq error (status %d): %s", resp.StatusCode, string(body))
	}

	return readStream(resp.Body, fn)
}

// readStream decodes server-sent events from r until the [DONE]
// sentinel, forwarding each non-empty content delta to fn.
func readStream(r io.Reader, fn func(fragment string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("groq error: %s", chunk.Error.Message)
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := fn(choice.Delta.Content); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

// loadSystemPrompt loads the answer prompt from the store, falling back
// to the built-in default if unavailable.
func (s *GenerationService) loadSystemPrompt() string {
	if s.promptStore == nil {
		return defaultSystemPrompt
	}
	prompt, err := s.promptStore.Load(driven.PromptAnswerSystem)
	if err != nil {
		return defaultSystemPrompt
	}
	return prompt
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the hardcoded default prompt.
func (s *GenerationService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *GenerationService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
