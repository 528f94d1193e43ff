// Package http provides the HTTP API for ragserver.
package http

// ChatRequest is the request body for POST /api/chat and
// POST /api/chat/with-prompt.
type ChatRequest struct {
	Message        string `json:"message"`
	SystemPrompt   string `json:"system_prompt,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the response body for the chat endpoints.
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
}

// RagAnswerRequest is the request body for POST /api/rag/answer. TopK and
// SimilarityThreshold are pointers so an omitted field can be told apart
// from an explicit zero; omitted fields fall back to the configured values.
type RagAnswerRequest struct {
	Question            string   `json:"question"`
	TopK                *int     `json:"top_k,omitempty"`
	SimilarityThreshold *float32 `json:"similarity_threshold,omitempty"`
}

// RagAnswerResponse is the response body for POST /api/rag/answer.
type RagAnswerResponse struct {
	Answer string `json:"answer"`
}

// SearchHit is a single similarity search result.
type SearchHit struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
}

// SearchResponse is the response body for GET /api/rag/search.
type SearchResponse struct {
	Count   int         `json:"count"`
	Results []SearchHit `json:"results"`
}

// UploadTextRequest is the request body for POST /api/documents/upload-text.
type UploadTextRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// LoadFileRequest is the request body for POST /api/documents/load-file.
type LoadFileRequest struct {
	FilePath string `json:"file_path"`
}

// LoadResponse is the response body for the document loading endpoints.
type LoadResponse struct {
	DocumentsLoaded int    `json:"documents_loaded"`
	Message         string `json:"message"`
}

// ErrorResponse is the JSON body returned on request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
