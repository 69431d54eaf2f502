// Command lexrag is the entry point for the lexrag CLI. It assembles
// the driven adapters and core services and hands control to the
// command tree.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/atticus-labs/lexrag/internal/adapters/driven/config/file"
	"github.com/atticus-labs/lexrag/internal/adapters/driven/embedding/hugface"
	"github.com/atticus-labs/lexrag/internal/adapters/driven/llm/groq"
	"github.com/atticus-labs/lexrag/internal/adapters/driven/storage/sqlite"
	"github.com/atticus-labs/lexrag/internal/adapters/driven/textsource/pdf"
	"github.com/atticus-labs/lexrag/internal/adapters/driving/cli"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
	"github.com/atticus-labs/lexrag/internal/core/services"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional; API keys may come from a .env file during development.
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config store: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.dir"))
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	defer store.Close()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("init prompt store: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	generator, err := newGenerator(cfg, prompts)
	if err != nil {
		return err
	}

	texts, err := newTextSource(cfg)
	if err != nil {
		return err
	}

	// Services degrade gracefully: commands whose adapters are not
	// configured report that instead of the whole CLI refusing to start.
	if embedder != nil {
		search := services.NewSearchService(store, embedder)
		importer := services.NewImportService(search)

		var retrieval *services.RetrievalService
		if generator != nil && texts != nil {
			sessions := services.NewSessionStore(cfg.GetInt("retrieval.session_capacity"))
			retrieval = services.NewRetrievalService(
				texts, embedder, generator, sessions,
				cfg.GetInt("retrieval.max_tokens"),
			)
		}

		if retrieval != nil {
			cli.SetServices(search, retrieval, importer)
		} else {
			cli.SetServices(search, nil, importer)
		}
	} else {
		logger.Warn("No embedding API key configured; search, import and ask are unavailable")
	}

	cli.SetVersion(version)
	return cli.Execute()
}

// newEmbedder builds the Hugging Face adapter, or returns nil when no
// API key is configured.
func newEmbedder(cfg driven.ConfigStore) (*hugface.EmbeddingService, error) {
	apiKey := os.Getenv("HF_TOKEN")
	if apiKey == "" {
		apiKey = cfg.GetString("embedding.api_key")
	}
	if apiKey == "" {
		return nil, nil
	}

	svc, err := hugface.NewEmbeddingService(hugface.Config{
		APIKey:     apiKey,
		BaseURL:    cfg.GetString("embedding.base_url"),
		Model:      cfg.GetString("embedding.model"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	})
	if err != nil {
		return nil, fmt.Errorf("init embedding service: %w", err)
	}
	return svc, nil
}

// newGenerator builds the Groq adapter, or returns nil when no API key
// is configured.
func newGenerator(cfg driven.ConfigStore, prompts driven.PromptStore) (*groq.GenerationService, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		apiKey = cfg.GetString("llm.api_key")
	}
	if apiKey == "" {
		return nil, nil
	}

	svc, err := groq.NewGenerationService(groq.Config{
		APIKey:  apiKey,
		BaseURL: cfg.GetString("llm.base_url"),
		Model:   cfg.GetString("llm.model"),
	})
	if err != nil {
		return nil, fmt.Errorf("init generation service: %w", err)
	}
	svc.SetPromptStore(prompts)
	return svc, nil
}

// newTextSource builds the PDF text source rooted at the configured
// documents directory, creating it on first run.
func newTextSource(cfg driven.ConfigStore) (*pdf.Source, error) {
	dir := cfg.GetString("documents.dir")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lexrag", "documents")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}

	src, err := pdf.NewSource(dir)
	if err != nil {
		return nil, fmt.Errorf("init text source: %w", err)
	}
	return src, nil
}
