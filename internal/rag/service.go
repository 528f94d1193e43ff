// Package rag answers questions grounded in documents retrieved from the
// vector store.
package rag

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/chat"
	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// Service answers questions using retrieved context and a chat model.
type Service struct {
	cfg       config.RAGConfig
	retriever *Retriever
	model     chat.Model
	logger    *zap.Logger
}

// NewService creates a RAG service.
func NewService(cfg config.RAGConfig, retriever *Retriever, model chat.Model, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		retriever: retriever,
		model:     model,
		logger:    logger,
	}
}

// Answer answers a question using the configured topK and similarity
// threshold.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	return s.AnswerWithParams(ctx, question, s.cfg.TopK, float32(s.cfg.SimilarityThreshold))
}

// AnswerWithParams answers a question with explicit retrieval parameters.
// A non-positive topK and a negative threshold fall back to the configured
// values; a threshold of exactly zero disables similarity filtering. When
// retrieval yields nothing the canned no-context answer is returned and
// the model is not called.
func (s *Service) AnswerWithParams(ctx context.Context, question string, topK int, threshold float32) (string, error) {
	start := time.Now()

	if strings.TrimSpace(question) == "" {
		return "", &AnswerError{Question: question, Elapsed: time.Since(start), Err: ErrBlankQuestion}
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if threshold < 0 {
		threshold = float32(s.cfg.SimilarityThreshold)
	}

	results, err := s.retriever.Retrieve(ctx, question, topK, threshold)
	if err != nil {
		return "", &AnswerError{Question: question, Elapsed: time.Since(start), Err: err}
	}
	if len(results) == 0 {
		s.logger.Info("no relevant documents, returning canned answer",
			zap.String("question", question),
			zap.Duration("elapsed", time.Since(start)),
		)
		return NoContextAnswer, nil
	}

	systemPrompt := s.cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	userMessage := buildUserMessage(buildContext(results), question)

	answer, err := s.model.Generate(ctx, systemPrompt, userMessage)
	if err != nil {
		return "", &AnswerError{Question: question, Elapsed: time.Since(start), Err: err}
	}

	s.logger.Info("question answered",
		zap.String("question", question),
		zap.Int("documents", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer, nil
}

// SearchDocuments exposes raw similarity search over the knowledge base.
func (s *Service) SearchDocuments(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	return s.retriever.Retrieve(ctx, query, topK, float32(s.cfg.SimilarityThreshold))
}
