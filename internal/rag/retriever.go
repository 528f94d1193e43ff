package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// Retriever performs similarity search against the vector store.
//
// Store failures degrade to an empty result set: answer generation falls
// back to the no-context response instead of surfacing transport errors
// to the caller.
type Retriever struct {
	store  vectorstore.Store
	logger *zap.Logger
}

// NewRetriever creates a retriever over the given store.
func NewRetriever(store vectorstore.Store, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, logger: logger}
}

// Retrieve returns the topK most similar documents at or above threshold.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float32) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrBlankQuery
	}

	results, err := r.store.SimilaritySearch(ctx, query, topK, threshold)
	if err != nil {
		r.logger.Warn("similarity search failed, treating as empty",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, nil
	}

	r.logger.Debug("documents retrieved",
		zap.String("query", query),
		zap.Int("count", len(results)),
	)
	return results, nil
}
