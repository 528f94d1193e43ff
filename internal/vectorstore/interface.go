// Package vectorstore defines the interface for vector storage operations.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Embedder generates vector embeddings from text.
//
// Embeddings are dense numerical representations that capture semantic
// meaning, enabling similarity search. The shape matches langchaingo's
// embeddings.Embedder so its implementations satisfy this interface directly.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	// Returns a slice of embeddings (one per input text) or an error.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	// Some models optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// This interface is transport-agnostic: implementations can be embedded
// (chromem-go) or talk to an external service (Qdrant). It covers what a
// knowledge base needs: bulk upsert and threshold-filtered similarity search.
type Store interface {
	// AddDocuments adds documents to the vector store in one batch.
	//
	// Documents are embedded and stored with their metadata. Documents
	// without an ID get one generated. Returns the IDs of the stored
	// documents, or ErrEmptyDocuments if docs is empty.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// SimilaritySearch returns up to topK documents most similar to the
	// query, ordered by similarity score (highest first). Results scoring
	// below threshold are excluded; a threshold of 0 disables filtering.
	SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]SearchResult, error)

	// Close closes the vector store and releases resources.
	Close() error
}
