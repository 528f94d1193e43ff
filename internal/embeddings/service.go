// Package embeddings provides embedding generation via langchaingo.
//
// It wraps langchaingo's embeddings abstraction to generate vector
// embeddings for text content. The endpoint must be OpenAI-compatible,
// which covers both the OpenAI API and local TEI (Text Embeddings
// Inference) servers.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/config"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Service provides embedding generation functionality.
type Service struct {
	embedder *embeddings.EmbedderImpl
	logger   *zap.Logger
}

// NewService creates a new embedding service with the given configuration.
//
// When cfg.ProxyURL is set, embedding traffic goes through that proxy via
// an explicitly constructed HTTP client. Returns an error if the
// configuration is invalid.
func NewService(cfg config.EmbeddingsConfig, logger *zap.Logger) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// langchaingo requires a token; TEI ignores it.
	apiKey := cfg.APIKey.Value()
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	}

	if cfg.ProxyURL != "" {
		client, err := proxyHTTPClient(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("building proxy client: %w", err)
		}
		opts = append(opts, openai.WithHTTPClient(client))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	logger.Info("embedding service initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Bool("proxied", cfg.ProxyURL != ""),
	)

	return &Service{embedder: embedder, logger: logger}, nil
}

// proxyHTTPClient builds an HTTP client routing through the given proxy.
func proxyHTTPClient(proxyURL string) (*http.Client, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}
	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
	}, nil
}

// Embedder returns the underlying langchaingo Embedder.
//
// The returned value also satisfies vectorstore.Embedder, so the service
// can be plugged directly into the vector store layer.
func (s *Service) Embedder() embeddings.Embedder {
	return s.embedder
}

// Embed generates embeddings for the given texts.
//
// Returns one float32 vector per input text, all with the same dimension.
// Returns ErrEmptyInput if texts is empty or nil.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}

	return vectors, nil
}
