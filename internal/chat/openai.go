package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/alanzheng/ragserver/internal/config"
)

// openAIModel implements Model against an OpenAI-compatible endpoint
// via langchaingo.
type openAIModel struct {
	llm         *openai.LLM
	temperature float64
}

// NewLLM builds a langchaingo OpenAI client from the LLM configuration.
//
// When cfg.ProxyURL is set, all traffic goes through that proxy via an
// explicitly constructed HTTP client rather than ambient process state.
func NewLLM(cfg config.LLMConfig) (*openai.LLM, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout.Duration()}
	if cfg.ProxyURL != "" {
		parsed, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return llm, nil
}

// NewOpenAIModel creates a Model backed by an OpenAI-compatible chat API.
func NewOpenAIModel(cfg config.LLMConfig) (Model, error) {
	llm, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}
	return &openAIModel{llm: llm, temperature: cfg.Temperature}, nil
}

// Generate sends the prompt to the chat API and returns the generated text.
func (m *openAIModel) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))

	opts := []llms.CallOption{}
	if m.temperature > 0 {
		opts = append(opts, llms.WithTemperature(m.temperature))
	}

	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

var _ Model = (*openAIModel)(nil)
