package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/chat"
	"github.com/alanzheng/ragserver/internal/document"
	"github.com/alanzheng/ragserver/internal/ingest"
	"github.com/alanzheng/ragserver/internal/rag"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "ragserver",
	})
}

// handleSimpleChat handles GET /api/chat/simple?message=...
func (s *Server) handleSimpleChat(c echo.Context) error {
	message := c.QueryParam("message")
	if message == "" {
		message = "你好，请介绍一下你自己。"
	}

	reply, err := s.chatSvc.Chat(c.Request().Context(), message)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.String(http.StatusOK, reply)
}

// handleChat handles POST /api/chat. A missing conversation ID is
// replaced with a fresh one so clients can thread follow-ups.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := s.chatSvc.Chat(c.Request().Context(), req.Message)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
	})
}

// handleChatWithPrompt handles POST /api/chat/with-prompt.
func (s *Server) handleChatWithPrompt(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := s.chatSvc.ChatWithSystemPrompt(c.Request().Context(), req.SystemPrompt, req.Message)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
	})
}

// handleStructuredActors handles GET /api/chat/structured/actors?actor=...&count=...
func (s *Server) handleStructuredActors(c echo.Context) error {
	actor := c.QueryParam("actor")
	if actor == "" {
		actor = "Tom Hanks"
	}

	count := 0
	if raw := c.QueryParam("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "count must be an integer"})
		}
		count = parsed
	}

	films, err := s.structuredSvc.ActorFilms(c.Request().Context(), actor, count)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// handleStructuredWeather handles GET /api/chat/structured/weather?city=...&month=...
func (s *Server) handleStructuredWeather(c echo.Context) error {
	city := c.QueryParam("city")
	if city == "" {
		city = "北京"
	}
	month := c.QueryParam("month")
	if month == "" {
		month = "一月"
	}

	report, err := s.structuredSvc.Weather(c.Request().Context(), city, month)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// handleRagAnswer handles POST /api/rag/answer.
func (s *Server) handleRagAnswer(c echo.Context) error {
	var req RagAnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
	}
	// Omitted threshold means "use the configured value"; an explicit
	// zero disables filtering.
	threshold := float32(-1)
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	answer, err := s.ragSvc.AnswerWithParams(c.Request().Context(), req.Question, topK, threshold)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, RagAnswerResponse{Answer: answer})
}

// handleRagSearch handles GET /api/rag/search?query=...&top_k=...
func (s *Server) handleRagSearch(c echo.Context) error {
	query := c.QueryParam("query")

	topK := 0
	if raw := c.QueryParam("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "top_k must be an integer"})
		}
		topK = parsed
	}

	results, err := s.ragSvc.SearchDocuments(c.Request().Context(), query, topK)
	if err != nil {
		return s.serviceError(c, err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		source, _ := r.Metadata[vectorstore.MetaSource].(string)
		hits = append(hits, SearchHit{
			Content: r.Content,
			Source:  source,
			Score:   r.Score,
		})
	}
	return c.JSON(http.StatusOK, SearchResponse{Count: len(hits), Results: hits})
}

// handleLoadAll handles POST /api/documents/load.
func (s *Server) handleLoadAll(c echo.Context) error {
	n, err := s.ingestSvc.IngestAll(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, LoadResponse{
		DocumentsLoaded: n,
		Message:         loadMessage(n),
	})
}

// handleLoadFile handles POST /api/documents/load-file.
func (s *Server) handleLoadFile(c echo.Context) error {
	var req LoadFileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	n, err := s.ingestSvc.IngestFile(c.Request().Context(), req.FilePath)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, LoadResponse{
		DocumentsLoaded: n,
		Message:         loadMessage(n),
	})
}

// handleUploadText handles POST /api/documents/upload-text. Stores a
// single piece of raw text so embedding and storage can be exercised
// without touching the filesystem.
func (s *Server) handleUploadText(c echo.Context) error {
	var req UploadTextRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	n, err := s.ingestSvc.IngestText(c.Request().Context(), req.Text, req.Source)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, LoadResponse{
		DocumentsLoaded: n,
		Message:         loadMessage(n),
	})
}

// handleAgentSimpleChat handles GET /api/agent/chat?message=...
func (s *Server) handleAgentSimpleChat(c echo.Context) error {
	message := c.QueryParam("message")

	reply, err := s.agentSvc.Chat(c.Request().Context(), message)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.String(http.StatusOK, reply)
}

// handleAgentChat handles POST /api/agent/chat. The agent decides which
// knowledge-base tools to invoke before answering.
func (s *Server) handleAgentChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	var reply string
	var err error
	if strings.TrimSpace(req.SystemPrompt) != "" {
		reply, err = s.agentSvc.ChatWithSystemPrompt(c.Request().Context(), req.SystemPrompt, req.Message)
	} else {
		reply, err = s.agentSvc.Chat(c.Request().Context(), req.Message)
	}
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
	})
}

func loadMessage(n int) string {
	if n == 0 {
		return "no documents found to load"
	}
	return "documents loaded successfully"
}

// serviceError maps service failures to HTTP status codes. Validation
// failures become 400s, everything else a 500 with the message hidden
// behind a generic error.
func (s *Server) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, chat.ErrBlankMessage),
		errors.Is(err, rag.ErrBlankQuery),
		errors.Is(err, rag.ErrBlankQuestion),
		errors.Is(err, document.ErrBlankPath),
		errors.Is(err, ingest.ErrBlankText):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: trimmedError(err)})
	case errors.Is(err, document.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: trimmedError(err)})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func trimmedError(err error) string {
	return strings.TrimSpace(err.Error())
}
