// Package ingest loads documents from the knowledge base directory into
// the vector store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/document"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// Service ingests documents into a vector store.
type Service struct {
	cfg    config.IngestConfig
	loader *document.Loader
	store  vectorstore.Store
	logger *zap.Logger
}

// NewService creates an ingestion service.
func NewService(cfg config.IngestConfig, loader *document.Loader, store vectorstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:    cfg,
		loader: loader,
		store:  store,
		logger: logger,
	}
}

// IngestAll loads every document under the knowledge base root and stores
// it. A missing root is created and counts as an empty knowledge base.
// Returns the number of documents stored.
func (s *Service) IngestAll(ctx context.Context) (int, error) {
	start := time.Now()
	root := s.cfg.KnowledgeBasePath

	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return 0, &IngestError{Path: root, Elapsed: time.Since(start), Err: fmt.Errorf("creating knowledge base directory: %w", err)}
		}
		s.logger.Info("knowledge base directory created", zap.String("path", root))
		return 0, nil
	}

	return s.ingestTree(ctx, root, start)
}

// IngestDir loads every document under root and stores it. Unlike
// IngestAll, a missing root is an error rather than an empty knowledge
// base.
func (s *Service) IngestDir(ctx context.Context, root string) (int, error) {
	start := time.Now()

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return 0, &IngestError{Path: root, Elapsed: time.Since(start), Err: fmt.Errorf("%w: %s", document.ErrNotFound, root)}
		}
		return 0, &IngestError{Path: root, Elapsed: time.Since(start), Err: fmt.Errorf("stat %s: %w", root, err)}
	}

	return s.ingestTree(ctx, root, start)
}

func (s *Service) ingestTree(ctx context.Context, root string, start time.Time) (int, error) {
	docs, err := s.loader.LoadAll(ctx, root)
	if err != nil {
		return 0, &IngestError{Path: root, Elapsed: time.Since(start), Err: err}
	}
	if len(docs) == 0 {
		s.logger.Info("no documents found", zap.String("path", root))
		return 0, nil
	}

	stored, err := s.storeDocuments(ctx, docs)
	if err != nil {
		return 0, &IngestError{Path: root, Elapsed: time.Since(start), Err: err}
	}

	s.logger.Info("documents ingested",
		zap.String("path", root),
		zap.Int("documents", stored),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stored, nil
}

// IngestFile loads a single file and stores its documents. Returns the
// number of documents stored.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	start := time.Now()

	docs, err := s.loader.LoadOne(ctx, path)
	if err != nil {
		return 0, &IngestError{Path: path, Elapsed: time.Since(start), Err: err}
	}
	if len(docs) == 0 {
		s.logger.Warn("file yielded no documents", zap.String("path", path))
		return 0, nil
	}

	stored, err := s.storeDocuments(ctx, docs)
	if err != nil {
		return 0, &IngestError{Path: path, Elapsed: time.Since(start), Err: err}
	}

	s.logger.Info("file ingested",
		zap.String("path", path),
		zap.Int("documents", stored),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stored, nil
}

// uploadSource labels manually uploaded text when the caller gives no
// source of its own.
const uploadSource = "手动上传"

// IngestText embeds and stores a single piece of raw text. The text is
// stored as-is, without chunking.
func (s *Service) IngestText(ctx context.Context, text, source string) (int, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return 0, &IngestError{Path: source, Elapsed: time.Since(start), Err: ErrBlankText}
	}
	if strings.TrimSpace(source) == "" {
		source = uploadSource
	}

	doc := vectorstore.Document{
		Content: text,
		Metadata: map[string]interface{}{
			vectorstore.MetaSource: source,
			"type":                 "upload",
			"timestamp":            time.Now().UnixMilli(),
		},
	}

	ids, err := s.store.AddDocuments(ctx, []vectorstore.Document{doc})
	if err != nil {
		return 0, &IngestError{Path: source, Elapsed: time.Since(start), Err: fmt.Errorf("storing text: %w", err)}
	}

	s.logger.Info("text ingested",
		zap.String("source", source),
		zap.Int("length", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return len(ids), nil
}

func (s *Service) storeDocuments(ctx context.Context, docs []vectorstore.Document) (int, error) {
	if s.cfg.ChunkDocuments {
		chunked, err := s.chunk(docs)
		if err != nil {
			return 0, err
		}
		docs = chunked
	}

	ids, err := s.store.AddDocuments(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("storing documents: %w", err)
	}
	return len(ids), nil
}

// chunk splits each document into overlapping pieces, carrying the parent
// document's metadata onto every piece.
func (s *Service) chunk(docs []vectorstore.Document) ([]vectorstore.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.cfg.ChunkSize),
		textsplitter.WithChunkOverlap(s.cfg.ChunkOverlap),
	)

	var out []vectorstore.Document
	for _, doc := range docs {
		pieces, err := splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %w", doc.Source(), err)
		}
		for _, piece := range pieces {
			meta := make(map[string]interface{}, len(doc.Metadata))
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			out = append(out, vectorstore.Document{
				Content:  piece,
				Metadata: meta,
			})
		}
	}
	return out, nil
}
