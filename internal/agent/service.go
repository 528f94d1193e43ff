// Package agent runs tool-assisted conversations: the model decides which
// knowledge-base tools to invoke and answers from their results.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/chat"
	"github.com/alanzheng/ragserver/internal/ingest"
	"github.com/alanzheng/ragserver/internal/rag"
)

const maxIterations = 5

// DefaultSystemPrompt frames the agent and the tools at its disposal.
const DefaultSystemPrompt = `你是一个智能助手，可以使用以下工具来帮助用户：

1. loadAllDocuments - 加载知识库中的所有文档到向量存储。返回加载的文档数量。
2. loadDocument - 加载指定文件到向量存储。参数：文件的完整路径。返回加载的文档数量。
3. answerQuestion - 基于知识库回答用户问题。使用RAG（检索增强生成）技术，从知识库中检索相关信息并生成回答。参数：用户的问题。
4. searchDocuments - 从知识库中检索与查询相关的文档。参数：查询文本。返回检索到的文档摘要。

当用户需要查询知识库、加载文档或检索信息时，你应该主动使用相应的工具。
使用工具后，请根据工具返回的结果给用户一个清晰的回答。`

// NewExecutor builds a tool-calling executor over the knowledge-base tools.
func NewExecutor(llm llms.Model, ingestSvc *ingest.Service, ragSvc *rag.Service) (chains.Chain, error) {
	return NewExecutorWithTools(llm, Tools(ingestSvc, ragSvc))
}

// NewExecutorWithTools builds an executor over an explicit tool set.
func NewExecutorWithTools(llm llms.Model, toolset []tools.Tool) (chains.Chain, error) {
	executor, err := agents.Initialize(
		llm,
		toolset,
		agents.ZeroShotReactDescription,
		agents.WithMaxIterations(maxIterations),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing agent executor: %w", err)
	}
	return executor, nil
}

// Service drives conversations through a lazily constructed executor.
//
// The executor (and therefore the LLM client behind it) is built on first
// use and at most once, even under concurrent first calls.
type Service struct {
	newExecutor func() (chains.Chain, error)
	logger      *zap.Logger

	once     sync.Once
	executor chains.Chain
	initErr  error
}

// NewService creates an agent service. newExecutor is invoked lazily on
// the first request; construction failures are returned from every
// subsequent call rather than retried.
func NewService(newExecutor func() (chains.Chain, error), logger *zap.Logger) (*Service, error) {
	if newExecutor == nil {
		return nil, fmt.Errorf("%w: executor constructor is required", chat.ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{newExecutor: newExecutor, logger: logger}, nil
}

// NewServiceWithExecutor creates an agent service around an existing
// executor. Used by tests and callers that already hold one.
func NewServiceWithExecutor(executor chains.Chain, logger *zap.Logger) (*Service, error) {
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is required", chat.ErrInvalidConfig)
	}
	return NewService(func() (chains.Chain, error) { return executor, nil }, logger)
}

func (s *Service) getExecutor() (chains.Chain, error) {
	s.once.Do(func() {
		s.executor, s.initErr = s.newExecutor()
		if s.initErr == nil {
			s.logger.Info("agent executor initialized")
		}
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("initializing agent executor: %w", s.initErr)
	}
	return s.executor, nil
}

// Chat runs the agent loop on a user message using the default system
// prompt.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	return s.ChatWithSystemPrompt(ctx, "", message)
}

// ChatWithSystemPrompt runs the agent loop with an optional custom system
// prompt prepended to the input. A blank message fails with
// chat.ErrBlankMessage; a blank reply fails with chat.ErrEmptyResponse.
func (s *Service) ChatWithSystemPrompt(ctx context.Context, systemPrompt, message string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return "", chat.ErrBlankMessage
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	executor, err := s.getExecutor()
	if err != nil {
		return "", err
	}

	input := systemPrompt + "\n\n" + message
	reply, err := chains.Run(ctx, executor, input)
	if err != nil {
		s.logger.Error("agent run failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("running agent: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", chat.ErrEmptyResponse
	}

	s.logger.Info("agent run completed",
		zap.Duration("elapsed", time.Since(start)),
	)
	return reply, nil
}
