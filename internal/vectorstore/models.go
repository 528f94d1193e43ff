package vectorstore

// Metadata keys every stored document carries. Source traces a document
// back to its origin file and is required for answer attribution.
const (
	MetaSource   = "source"
	MetaFilename = "filename"
)

// Document represents a document to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document.
	// Generated by the store when empty.
	ID string

	// Content is the text content of the document.
	Content string

	// Metadata contains additional key-value pairs.
	// Common fields: source, filename, page_number.
	Metadata map[string]interface{}
}

// Source returns the document's source metadata, or "" if absent.
func (d Document) Source() string {
	if d.Metadata == nil {
		return ""
	}
	if s, ok := d.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// SearchResult represents a search result from the vector store.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the document text content.
	Content string

	// Score is the similarity score (higher = more similar).
	Score float32

	// Metadata contains the document metadata.
	Metadata map[string]interface{}
}

// Document converts a search result back to its stored document form.
func (r SearchResult) Document() Document {
	return Document{ID: r.ID, Content: r.Content, Metadata: r.Metadata}
}
