package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// loadPDF extracts text from a PDF, one document per non-empty page.
func (l *Loader) loadPDF(path string) ([]vectorstore.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	docs := make([]vectorstore.Document, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to parse.
			l.logger.Warn("skipping unparseable pdf page",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		docs = append(docs, vectorstore.Document{
			Content: text,
			Metadata: map[string]interface{}{
				vectorstore.MetaSource:   path,
				vectorstore.MetaFilename: filepath.Base(path),
				"page_number":            i,
				"total_pages":            pageCount,
			},
		})
	}

	return docs, nil
}
