// Package structured extracts typed values from chat model responses.
package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/chat"
)

// ErrMalformedOutput is returned when the model repeatedly fails to
// produce parseable JSON.
var ErrMalformedOutput = errors.New("model output is not valid JSON")

const maxAttempts = 3

const jsonSystemPrompt = "You are a structured data assistant. " +
	"Respond with a single JSON value that matches the requested schema exactly. " +
	"Do not wrap the JSON in markdown fences and do not add any commentary."

// Service prompts the model for JSON and decodes it into typed values.
type Service struct {
	model  chat.Model
	logger *zap.Logger
}

// NewService creates a structured output service.
func NewService(model chat.Model, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{model: model, logger: logger}
}

// defaultMovieCount is used when the caller asks for a non-positive
// number of movies.
const defaultMovieCount = 5

// ActorFilms returns a filmography of count movies for the named actor.
func (s *Service) ActorFilms(ctx context.Context, actor string, count int) (*ActorFilms, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, chat.ErrBlankMessage
	}
	if count <= 0 {
		count = defaultMovieCount
	}

	prompt := fmt.Sprintf(
		"List %d well-known movies starring %s.\n"+
			"Schema: {\"actor\": string, \"movies\": [string]}",
		count, actor,
	)

	var out ActorFilms
	if err := s.generate(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Weather returns an average weather report for the city and month.
func (s *Service) Weather(ctx context.Context, city, month string) (*WeatherReport, error) {
	if strings.TrimSpace(city) == "" || strings.TrimSpace(month) == "" {
		return nil, chat.ErrBlankMessage
	}

	prompt := fmt.Sprintf(
		"Describe the typical weather in %s during %s.\n"+
			"Schema: {\"city\": string, \"month\": string, \"averageTemperature\": number, \"description\": string}\n"+
			"averageTemperature is in degrees Celsius.",
		city, month,
	)

	var out WeatherReport
	if err := s.generate(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// generate asks the model for JSON and decodes the reply into v, retrying
// on malformed output.
func (s *Service) generate(ctx context.Context, prompt string, v interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		reply, err := s.model.Generate(ctx, jsonSystemPrompt, prompt)
		if err != nil {
			return fmt.Errorf("generating structured output: %w", err)
		}

		if err := json.Unmarshal([]byte(stripFences(reply)), v); err != nil {
			lastErr = err
			s.logger.Warn("structured output parse failed",
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrMalformedOutput, maxAttempts, lastErr)
}

// stripFences removes a markdown code fence around the reply, if present.
// Models add fences despite instructions often enough to handle it here.
func stripFences(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
