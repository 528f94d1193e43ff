package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/chat"
	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/ingest"
	"github.com/alanzheng/ragserver/internal/rag"
	"github.com/alanzheng/ragserver/internal/structured"
)

// Agent drives tool-assisted conversations. Implemented by agent.Service.
type Agent interface {
	Chat(ctx context.Context, message string) (string, error)
	ChatWithSystemPrompt(ctx context.Context, systemPrompt, message string) (string, error)
}

// Server provides the HTTP endpoints for chat, RAG and document loading.
type Server struct {
	echo          *echo.Echo
	cfg           config.ServerConfig
	chatSvc       *chat.Service
	ragSvc        *rag.Service
	structuredSvc *structured.Service
	ingestSvc     *ingest.Service
	agentSvc      Agent
	logger        *zap.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(
	cfg config.ServerConfig,
	chatSvc *chat.Service,
	ragSvc *rag.Service,
	structuredSvc *structured.Service,
	ingestSvc *ingest.Service,
	agentSvc Agent,
	logger *zap.Logger,
) (*Server, error) {
	if chatSvc == nil {
		return nil, fmt.Errorf("chat service is required")
	}
	if ragSvc == nil {
		return nil, fmt.Errorf("rag service is required")
	}
	if structuredSvc == nil {
		return nil, fmt.Errorf("structured output service is required")
	}
	if ingestSvc == nil {
		return nil, fmt.Errorf("ingest service is required")
	}
	if agentSvc == nil {
		return nil, fmt.Errorf("agent service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(NewMetrics(logger).Middleware())

	s := &Server{
		echo:          e,
		cfg:           cfg,
		chatSvc:       chatSvc,
		ragSvc:        ragSvc,
		structuredSvc: structuredSvc,
		ingestSvc:     ingestSvc,
		agentSvc:      agentSvc,
		logger:        logger,
	}
	s.registerRoutes()

	return s, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/chat/simple", s.handleSimpleChat)
	api.POST("/chat", s.handleChat)
	api.POST("/chat/with-prompt", s.handleChatWithPrompt)
	api.GET("/chat/structured/actors", s.handleStructuredActors)
	api.GET("/chat/structured/weather", s.handleStructuredWeather)

	api.GET("/agent/chat", s.handleAgentSimpleChat)
	api.POST("/agent/chat", s.handleAgentChat)

	api.POST("/rag/answer", s.handleRagAnswer)
	api.GET("/rag/search", s.handleRagSearch)

	api.POST("/documents/load", s.handleLoadAll)
	api.POST("/documents/load-file", s.handleLoadFile)
	api.POST("/documents/upload-text", s.handleUploadText)
}

// Start starts the HTTP server and blocks until ctx is cancelled. Returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			s.cfg.ShutdownTimeout.Duration(),
		)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Echo returns the underlying Echo instance. Used by tests to drive
// requests without a listener.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
