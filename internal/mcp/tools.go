package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

type loadAllInput struct{}

type loadAllOutput struct {
	DocumentsLoaded int    `json:"documents_loaded" jsonschema:"Number of documents stored"`
	Message         string `json:"message" jsonschema:"Human-readable result"`
}

type loadDocumentInput struct {
	FilePath string `json:"file_path" jsonschema:"required,Path to the file to load"`
}

type loadDocumentOutput struct {
	DocumentsLoaded int    `json:"documents_loaded" jsonschema:"Number of documents stored"`
	Message         string `json:"message" jsonschema:"Human-readable result"`
}

type answerQuestionInput struct {
	Question string `json:"question" jsonschema:"required,Question to answer from the knowledge base"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"Number of documents to retrieve (default: 4)"`
}

type answerQuestionOutput struct {
	Answer string `json:"answer" jsonschema:"Answer grounded in the knowledge base"`
}

type searchDocumentsInput struct {
	Query string `json:"query" jsonschema:"required,Similarity search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"Number of documents to return (default: 4)"`
}

type searchHit struct {
	Content string  `json:"content" jsonschema:"Document content"`
	Source  string  `json:"source" jsonschema:"Document source path"`
	Score   float32 `json:"score" jsonschema:"Similarity score"`
}

type searchDocumentsOutput struct {
	Count   int         `json:"count" jsonschema:"Number of documents found"`
	Results []searchHit `json:"results" jsonschema:"Matching documents"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "load_all_documents",
		Description: "Load every document from the knowledge base directory into the vector store. Creates the directory if it does not exist.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args loadAllInput) (*mcp.CallToolResult, loadAllOutput, error) {
		n, err := s.ingestSvc.IngestAll(ctx)
		if err != nil {
			s.logger.Error("load_all_documents failed", zap.Error(err))
			return nil, loadAllOutput{}, err
		}
		return nil, loadAllOutput{
			DocumentsLoaded: n,
			Message:         resultMessage(n),
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "load_document",
		Description: "Load a single file into the vector store. Supports text, markdown and PDF files.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args loadDocumentInput) (*mcp.CallToolResult, loadDocumentOutput, error) {
		n, err := s.ingestSvc.IngestFile(ctx, args.FilePath)
		if err != nil {
			s.logger.Error("load_document failed",
				zap.String("path", args.FilePath),
				zap.Error(err),
			)
			return nil, loadDocumentOutput{}, err
		}
		return nil, loadDocumentOutput{
			DocumentsLoaded: n,
			Message:         resultMessage(n),
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer a question using documents retrieved from the knowledge base. Returns a canned response when nothing relevant is found.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args answerQuestionInput) (*mcp.CallToolResult, answerQuestionOutput, error) {
		answer, err := s.ragSvc.AnswerWithParams(ctx, args.Question, args.TopK, -1)
		if err != nil {
			s.logger.Error("answer_question failed", zap.Error(err))
			return nil, answerQuestionOutput{}, err
		}
		return nil, answerQuestionOutput{Answer: answer}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_documents",
		Description: "Similarity search over the knowledge base. Returns matching documents with sources and scores.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args searchDocumentsInput) (*mcp.CallToolResult, searchDocumentsOutput, error) {
		results, err := s.ragSvc.SearchDocuments(ctx, args.Query, args.TopK)
		if err != nil {
			s.logger.Error("search_documents failed", zap.Error(err))
			return nil, searchDocumentsOutput{}, err
		}

		hits := make([]searchHit, 0, len(results))
		for _, r := range results {
			hits = append(hits, searchHit{
				Content: r.Content,
				Source:  sourceOf(r),
				Score:   r.Score,
			})
		}
		return nil, searchDocumentsOutput{Count: len(hits), Results: hits}, nil
	})
}

func resultMessage(n int) string {
	if n == 0 {
		return "no documents found to load"
	}
	return "documents loaded successfully"
}

func sourceOf(r vectorstore.SearchResult) string {
	if s, ok := r.Metadata[vectorstore.MetaSource].(string); ok {
		return s
	}
	return ""
}
