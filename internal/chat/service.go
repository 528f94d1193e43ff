package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxLogMessageLength caps how much of a message lands in a log line.
const maxLogMessageLength = 200

// Service provides chat completion on top of a lazily constructed Model.
//
// The model client is built on first use and at most once, even under
// concurrent first calls.
type Service struct {
	newModel func() (Model, error)
	logger   *zap.Logger

	once    sync.Once
	model   Model
	initErr error
}

// NewService creates a chat service. newModel is invoked lazily on the
// first request; construction failures are returned from every subsequent
// call rather than retried.
func NewService(newModel func() (Model, error), logger *zap.Logger) (*Service, error) {
	if newModel == nil {
		return nil, fmt.Errorf("%w: model constructor is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{newModel: newModel, logger: logger}, nil
}

// NewServiceWithModel creates a chat service around an existing model.
// Used by tests and callers that already hold a Model.
func NewServiceWithModel(model Model, logger *zap.Logger) (*Service, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	svc, err := NewService(func() (Model, error) { return model, nil }, logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// getModel returns the lazily initialized model.
func (s *Service) getModel() (Model, error) {
	s.once.Do(func() {
		s.model, s.initErr = s.newModel()
		if s.initErr == nil {
			s.logger.Info("chat model initialized")
		}
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("initializing chat model: %w", s.initErr)
	}
	return s.model, nil
}

// Chat sends a user message and returns the model's reply.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	return s.ChatWithSystemPrompt(ctx, "", message)
}

// ChatWithSystemPrompt sends a user message with an optional system prompt.
//
// A blank message fails with ErrBlankMessage; a blank model reply fails
// with ErrEmptyResponse.
func (s *Service) ChatWithSystemPrompt(ctx context.Context, systemPrompt, message string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return "", ErrBlankMessage
	}

	s.logger.Info("chat request",
		zap.String("message", truncate(message)),
		zap.Bool("has_system_prompt", strings.TrimSpace(systemPrompt) != ""),
	)

	model, err := s.getModel()
	if err != nil {
		return "", err
	}

	reply, err := model.Generate(ctx, systemPrompt, message)
	if err != nil {
		s.logger.Error("chat failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("message", truncate(message)),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Info("chat completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("reply", truncate(reply)),
	)
	return reply, nil
}

// truncate shortens a message for logging.
func truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= maxLogMessageLength {
		return message
	}
	return string(runes[:maxLogMessageLength]) + "...(truncated)"
}
