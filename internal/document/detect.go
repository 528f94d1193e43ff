package document

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// loadDetected handles files with unrecognized extensions by sniffing the
// MIME type. Text-like files are read whole; anything else (and any
// detection failure) yields an empty list with a warning, never an error.
func (l *Loader) loadDetected(path string) ([]vectorstore.Document, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		l.logger.Warn("mime detection failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil
	}

	if !isTextLike(mtype) {
		l.logger.Warn("unsupported file type skipped",
			zap.String("path", path),
			zap.String("mime", mtype.String()),
		)
		return nil, nil
	}

	docs, err := l.loadText(path)
	if err != nil {
		l.logger.Warn("failed to read detected text file",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil
	}
	return docs, nil
}

// isTextLike reports whether the detected type is text in any form,
// walking the MIME hierarchy (e.g. application/json is a child of
// text/plain).
func isTextLike(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}
