package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/tmc/langchaingo/chains"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/agent"
	"github.com/alanzheng/ragserver/internal/chat"
	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/document"
	"github.com/alanzheng/ragserver/internal/embeddings"
	httpserver "github.com/alanzheng/ragserver/internal/http"
	"github.com/alanzheng/ragserver/internal/ingest"
	"github.com/alanzheng/ragserver/internal/logging"
	mcpserver "github.com/alanzheng/ragserver/internal/mcp"
	"github.com/alanzheng/ragserver/internal/rag"
	"github.com/alanzheng/ragserver/internal/structured"
	"github.com/alanzheng/ragserver/internal/telemetry"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// serviceModel exposes the chat service as a chat.Model.
type serviceModel struct {
	svc *chat.Service
}

func (m serviceModel) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return m.svc.ChatWithSystemPrompt(ctx, systemPrompt, userMessage)
}

// app holds the wired services shared by the serve, mcp and ingest
// commands.
type app struct {
	cfg           *config.Config
	logger        *zap.Logger
	telemetry     *telemetry.Telemetry
	store         vectorstore.Store
	chatSvc       *chat.Service
	ragSvc        *rag.Service
	structuredSvc *structured.Service
	ingestSvc     *ingest.Service
	agentSvc      *agent.Service
}

// newApp loads configuration and wires every service.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	embeddingSvc, err := embeddings.NewService(cfg.Embeddings, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing embeddings: %w", err)
	}

	store, err := vectorstore.New(ctx, cfg.VectorStore, embeddingSvc.Embedder(), logger)
	if err != nil {
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}

	chatSvc, err := chat.NewService(func() (chat.Model, error) {
		return chat.NewOpenAIModel(cfg.LLM)
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing chat service: %w", err)
	}

	loader := document.NewLoader(logger)
	ingestSvc := ingest.NewService(cfg.Ingest, loader, store, logger)

	// Route generation through the chat service so the model client is
	// built lazily: ingest-only runs never need LLM credentials.
	model := serviceModel{svc: chatSvc}
	retriever := rag.NewRetriever(store, logger)
	ragSvc := rag.NewService(cfg.RAG, retriever, model, logger)
	structuredSvc := structured.NewService(model, logger)

	// The agent builds its own LLM client lazily for the same reason.
	agentSvc, err := agent.NewService(func() (chains.Chain, error) {
		llm, err := chat.NewLLM(cfg.LLM)
		if err != nil {
			return nil, err
		}
		return agent.NewExecutor(llm, ingestSvc, ragSvc)
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing agent service: %w", err)
	}

	return &app{
		cfg:           cfg,
		logger:        logger,
		telemetry:     tel,
		store:         store,
		chatSvc:       chatSvc,
		ragSvc:        ragSvc,
		structuredSvc: structuredSvc,
		ingestSvc:     ingestSvc,
		agentSvc:      agentSvc,
	}, nil
}

// close releases the vector store, shuts down telemetry and flushes the
// logger.
func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing vector store", zap.Error(err))
	}
	if err := a.telemetry.Shutdown(context.Background()); err != nil {
		a.logger.Warn("shutting down telemetry", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("starting ragserver",
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port),
		zap.String("vector_store", a.cfg.VectorStore.Provider),
	)

	srv, err := httpserver.NewServer(
		a.cfg.Server,
		a.chatSvc,
		a.ragSvc,
		a.structuredSvc,
		a.ingestSvc,
		a.agentSvc,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("initializing HTTP server: %w", err)
	}

	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}

// runMCP starts the MCP server on stdio and blocks until the transport
// closes or ctx is cancelled.
func runMCP(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := mcpserver.NewServer(&mcpserver.Config{
		Name:    "ragserver",
		Version: version,
		Logger:  a.logger,
	}, a.ingestSvc, a.ragSvc)
	if err != nil {
		return fmt.Errorf("initializing MCP server: %w", err)
	}

	return srv.Run(ctx)
}

// runIngest loads documents into the vector store and exits. With no
// path it loads the configured knowledge base; given a path it loads
// that file or directory tree.
func runIngest(ctx context.Context, path string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if path == "" {
		n, err := a.ingestSvc.IngestAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d documents from %s\n", n, a.cfg.Ingest.KnowledgeBasePath)
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var n int
	if info.IsDir() {
		n, err = a.ingestSvc.IngestDir(ctx, path)
	} else {
		n, err = a.ingestSvc.IngestFile(ctx, path)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d documents from %s\n", n, path)
	return nil
}
