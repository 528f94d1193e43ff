package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/config"
)

// New creates a Store for the configured provider.
//
// "chromem" is the embedded default and needs no external service;
// "qdrant" talks to an external Qdrant instance over HTTP.
func New(ctx context.Context, cfg config.VectorStoreConfig, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case "chromem":
		return NewChromemStore(ChromemConfig{
			Path:       cfg.Path,
			Compress:   cfg.Compress,
			Collection: cfg.Collection,
			VectorSize: cfg.VectorSize,
		}, embedder, logger)
	case "qdrant":
		return NewQdrantStore(ctx, QdrantConfig{
			URL:        cfg.QdrantURL,
			Collection: cfg.Collection,
			VectorSize: cfg.VectorSize,
		}, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
