package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
	"go.uber.org/zap"
)

// QdrantConfig holds configuration for the external Qdrant backend.
type QdrantConfig struct {
	// URL is the Qdrant HTTP endpoint (e.g. http://localhost:6333).
	URL string

	// Collection is the Qdrant collection name.
	Collection string

	// VectorSize is the embedding dimension used when the collection
	// has to be created.
	VectorSize int
}

// Validate validates the configuration.
func (c *QdrantConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: URL required", ErrInvalidConfig)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection name required", ErrInvalidConfig)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// QdrantStore implements the Store interface against an external Qdrant
// instance via langchaingo's Qdrant vector store.
type QdrantStore struct {
	store  qdrant.Store
	config QdrantConfig
	logger *zap.Logger
}

// lcEmbedder adapts our Embedder interface to langchaingo's embeddings.Embedder.
type lcEmbedder struct {
	e Embedder
}

func (a lcEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return a.e.EmbedDocuments(ctx, texts)
}

func (a lcEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return a.e.EmbedQuery(ctx, text)
}

var _ embeddings.Embedder = lcEmbedder{}

// NewQdrantStore creates a QdrantStore, creating the collection if it does
// not exist yet.
func NewQdrantStore(ctx context.Context, config QdrantConfig, embedder Embedder, logger *zap.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	qdrantURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing Qdrant URL: %w", err)
	}

	if err := ensureCollection(ctx, config); err != nil {
		return nil, fmt.Errorf("ensuring collection %s: %w", config.Collection, err)
	}

	store, err := qdrant.New(
		qdrant.WithURL(*qdrantURL),
		qdrant.WithCollectionName(config.Collection),
		qdrant.WithEmbedder(lcEmbedder{e: embedder}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Qdrant store: %w", err)
	}

	logger.Info("qdrant store initialized",
		zap.String("url", config.URL),
		zap.String("collection", config.Collection),
		zap.Int("vector_size", config.VectorSize),
	)

	return &QdrantStore{
		store:  store,
		config: config,
		logger: logger,
	}, nil
}

// ensureCollection creates the collection via the Qdrant HTTP API if missing.
// Ref: https://qdrant.github.io/qdrant/redoc/index.html#tag/collections
func ensureCollection(ctx context.Context, config QdrantConfig) error {
	client := &http.Client{}
	collectionURL := fmt.Sprintf("%s/collections/%s", config.URL, config.Collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, collectionURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     config.VectorSize,
			"distance": "Cosine",
		},
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPut, collectionURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// AddDocuments adds documents to the vector store in one batch.
func (s *QdrantStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	schemaDocs, ids := toSchemaDocs(docs)

	if _, err := s.store.AddDocuments(ctx, schemaDocs); err != nil {
		return nil, fmt.Errorf("adding documents to store: %w", err)
	}

	s.logger.Debug("added documents to qdrant",
		zap.String("collection", s.config.Collection),
		zap.Int("count", len(docs)),
	)

	return ids, nil
}

// toSchemaDocs converts documents to langchaingo's schema, assigning IDs
// where missing. Metadata maps are copied so the caller's documents stay
// untouched; the ID lands in the copy so search results can recover it.
func toSchemaDocs(docs []Document) ([]schema.Document, []string) {
	schemaDocs := make([]schema.Document, len(docs))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("doc_%d_%d", timeNow().UnixNano(), i)
		}
		metadata := make(map[string]interface{}, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["id"] = ids[i]
		schemaDocs[i] = schema.Document{
			PageContent: doc.Content,
			Metadata:    metadata,
		}
	}
	return schemaDocs, ids
}

// SimilaritySearch performs similarity search with threshold filtering.
func (s *QdrantStore) SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	opts := []vectorstores.Option{}
	if threshold > 0 {
		opts = append(opts, vectorstores.WithScoreThreshold(threshold))
	}

	docs, err := s.store.SimilaritySearch(ctx, query, topK, opts...)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, len(docs))
	for i, doc := range docs {
		result := SearchResult{
			Content:  doc.PageContent,
			Metadata: doc.Metadata,
			Score:    doc.Score,
		}
		if id, ok := doc.Metadata["id"].(string); ok {
			result.ID = id
		}
		results[i] = result
	}

	return results, nil
}

// Close closes the QdrantStore. The underlying store is stateless HTTP.
func (s *QdrantStore) Close() error {
	s.logger.Info("qdrant store closed")
	return nil
}

// Ensure QdrantStore implements Store interface.
var _ Store = (*QdrantStore)(nil)
