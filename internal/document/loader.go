// Package document discovers and parses knowledge-base files.
//
// Files are dispatched by extension: PDFs get per-page text extraction,
// plain-text formats are read whole, and everything else goes through
// best-effort MIME detection. Per-file failures are logged and absorbed so
// one bad file never aborts a directory walk.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// Sentinel errors for document loading.
var (
	// ErrBlankPath indicates a blank file path argument.
	ErrBlankPath = errors.New("file path cannot be blank")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrEmptyDocument indicates a file with no usable content.
	ErrEmptyDocument = errors.New("document is empty")
)

// textExtensions are read whole as a single document.
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
}

const pdfExtension = ".pdf"

// Loader loads files into vector store documents.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a document loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadAll walks the directory tree under rootPath and loads every regular
// file it can parse. Unparseable or unreadable files contribute zero
// documents and are logged; they never abort the walk.
func (l *Loader) LoadAll(ctx context.Context, rootPath string) ([]vectorstore.Document, error) {
	if strings.TrimSpace(rootPath) == "" {
		return nil, ErrBlankPath
	}

	var docs []vectorstore.Document
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, keep walking.
			l.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fileDocs, err := l.loadFile(path)
		if err != nil {
			l.logger.Warn("failed to load file",
				zap.String("path", path),
				zap.Error(err),
			)
			return nil
		}
		docs = append(docs, fileDocs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", rootPath, err)
	}

	return docs, nil
}

// LoadOne loads a single file.
//
// Fails with ErrBlankPath for a blank path and ErrNotFound when the path
// does not exist. Parse failures are returned to the caller (unlike during
// walks, where they are absorbed).
func (l *Loader) LoadOne(ctx context.Context, filePath string) ([]vectorstore.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, ErrBlankPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}

	return l.loadFile(filePath)
}

// loadFile dispatches on the lowercase file extension.
func (l *Loader) loadFile(path string) ([]vectorstore.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == pdfExtension:
		return l.loadPDF(path)
	case textExtensions[ext]:
		return l.loadText(path)
	default:
		// Best-effort auto-detection; never fatal.
		return l.loadDetected(path)
	}
}

// loadText reads the whole file as one document.
func (l *Loader) loadText(path string) ([]vectorstore.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	return []vectorstore.Document{{
		Content: text,
		Metadata: map[string]interface{}{
			vectorstore.MetaSource:   path,
			vectorstore.MetaFilename: filepath.Base(path),
		},
	}}, nil
}
