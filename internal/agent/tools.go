package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools"

	"github.com/alanzheng/ragserver/internal/ingest"
	"github.com/alanzheng/ragserver/internal/rag"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// Tools returns the knowledge-base tools the agent can invoke.
func Tools(ingestSvc *ingest.Service, ragSvc *rag.Service) []tools.Tool {
	return []tools.Tool{
		loadAllTool{ingestSvc},
		loadDocumentTool{ingestSvc},
		answerQuestionTool{ragSvc},
		searchDocumentsTool{ragSvc},
	}
}

type loadAllTool struct {
	ingestSvc *ingest.Service
}

func (t loadAllTool) Name() string { return "loadAllDocuments" }

func (t loadAllTool) Description() string {
	return "Load every document from the knowledge base directory into the vector store. " +
		"Takes no input. Returns the number of documents loaded."
}

func (t loadAllTool) Call(ctx context.Context, _ string) (string, error) {
	n, err := t.ingestSvc.IngestAll(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %d documents", n), nil
}

type loadDocumentTool struct {
	ingestSvc *ingest.Service
}

func (t loadDocumentTool) Name() string { return "loadDocument" }

func (t loadDocumentTool) Description() string {
	return "Load a single file into the vector store. " +
		"Input is the full path to the file. Returns the number of documents loaded."
}

func (t loadDocumentTool) Call(ctx context.Context, input string) (string, error) {
	n, err := t.ingestSvc.IngestFile(ctx, strings.TrimSpace(input))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %d documents", n), nil
}

type answerQuestionTool struct {
	ragSvc *rag.Service
}

func (t answerQuestionTool) Name() string { return "answerQuestion" }

func (t answerQuestionTool) Description() string {
	return "Answer a question using documents retrieved from the knowledge base. " +
		"Input is the question text. Returns the grounded answer."
}

func (t answerQuestionTool) Call(ctx context.Context, input string) (string, error) {
	return t.ragSvc.Answer(ctx, strings.TrimSpace(input))
}

type searchDocumentsTool struct {
	ragSvc *rag.Service
}

func (t searchDocumentsTool) Name() string { return "searchDocuments" }

func (t searchDocumentsTool) Description() string {
	return "Similarity search over the knowledge base. " +
		"Input is the query text. Returns a summary of the matching documents."
}

func (t searchDocumentsTool) Call(ctx context.Context, input string) (string, error) {
	results, err := t.ragSvc.SearchDocuments(ctx, strings.TrimSpace(input), 0)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "no matching documents found", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "found %d documents:\n", len(results))
	for i, r := range results {
		source, _ := r.Metadata[vectorstore.MetaSource].(string)
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "%d. [%s] (score %.2f) %s\n", i+1, source, r.Score, snippet(r.Content))
	}
	return b.String(), nil
}

const snippetLimit = 200

// snippet truncates document content so tool output stays small enough
// to feed back into the model.
func snippet(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= snippetLimit {
		return string(runes)
	}
	return string(runes[:snippetLimit]) + "..."
}
