// Package config provides configuration loading for ragserver.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. Defaults are applied for anything left unset.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete ragserver configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	LLM         LLMConfig         `koanf:"llm"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Ingest      IngestConfig      `koanf:"ingest"`
	RAG         RAGConfig         `koanf:"rag"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// LLMConfig holds chat model configuration.
//
// The endpoint must be OpenAI-compatible. ProxyURL, when set, routes all
// LLM traffic through the given HTTP proxy; egress is never configured
// through process-global state.
type LLMConfig struct {
	BaseURL     string   `koanf:"base_url"`
	Model       string   `koanf:"model"`
	APIKey      Secret   `koanf:"api_key"`
	ProxyURL    string   `koanf:"proxy_url"`
	Timeout     Duration `koanf:"timeout"`
	Temperature float64  `koanf:"temperature"`
}

// EmbeddingsConfig holds embedding model configuration.
// Works with both OpenAI and TEI (OpenAI-compatible) endpoints.
type EmbeddingsConfig struct {
	BaseURL  string `koanf:"base_url"`
	Model    string `koanf:"model"`
	APIKey   Secret `koanf:"api_key"`
	ProxyURL string `koanf:"proxy_url"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant" (external).
	Provider string `koanf:"provider"`

	// Path is the persistence directory for the chromem backend.
	Path string `koanf:"path"`

	// Compress enables gzip compression of chromem's persisted data.
	Compress bool `koanf:"compress"`

	// Collection is the collection documents are stored in.
	Collection string `koanf:"collection"`

	// VectorSize is the embedding dimension. Must match the embedding model.
	VectorSize int `koanf:"vector_size"`

	// QdrantURL is the Qdrant HTTP endpoint for the qdrant backend.
	QdrantURL string `koanf:"qdrant_url"`
}

// IngestConfig holds knowledge-base ingestion configuration.
type IngestConfig struct {
	// KnowledgeBasePath is the root directory scanned for documents.
	KnowledgeBasePath string `koanf:"knowledge_base_path"`

	// ChunkDocuments toggles splitting documents before storage.
	// Disabled by default: whole documents are stored as-is.
	ChunkDocuments bool `koanf:"chunk_documents"`

	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`
}

// RAGConfig holds retrieval and answer-generation configuration.
type RAGConfig struct {
	TopK                int     `koanf:"top_k"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	SystemPrompt        string  `koanf:"system_prompt"`
}

// TelemetryConfig holds OpenTelemetry provider configuration. Metrics
// always export through the Prometheus registry; traces are only exported
// when TraceEndpoint is set.
type TelemetryConfig struct {
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`

	// TraceEndpoint is an OTLP gRPC endpoint (host:port). Empty disables
	// trace export.
	TraceEndpoint string `koanf:"trace_endpoint"`
	TraceInsecure bool   `koanf:"trace_insecure"`

	// SampleRate is the trace sampling ratio in [0,1].
	SampleRate float64 `koanf:"sample_rate"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be in 1-65535, got %d", c.Server.Port))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		errs = append(errs, fmt.Errorf("vectorstore.provider must be chromem or qdrant, got %q", c.VectorStore.Provider))
	}
	if c.VectorStore.VectorSize <= 0 {
		errs = append(errs, fmt.Errorf("vectorstore.vector_size must be positive, got %d", c.VectorStore.VectorSize))
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK))
	}
	if c.RAG.SimilarityThreshold < 0 || c.RAG.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("rag.similarity_threshold must be in [0,1], got %v", c.RAG.SimilarityThreshold))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_rate must be in [0,1], got %v", c.Telemetry.SampleRate))
	}
	if c.Ingest.ChunkDocuments {
		if c.Ingest.ChunkSize <= 0 {
			errs = append(errs, fmt.Errorf("ingest.chunk_size must be positive when chunking is enabled"))
		}
		if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
			errs = append(errs, fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size)"))
		}
	}

	return errors.Join(errs...)
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = Duration(60 * time.Second)
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080/v1"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}

	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = "chromem"
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "./vector-store"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "ragserver_default"
	}
	if cfg.VectorStore.VectorSize == 0 {
		cfg.VectorStore.VectorSize = 384 // bge-small-en-v1.5 dimensions
	}
	if cfg.VectorStore.QdrantURL == "" {
		cfg.VectorStore.QdrantURL = "http://localhost:6333"
	}

	if cfg.Ingest.KnowledgeBasePath == "" {
		cfg.Ingest.KnowledgeBasePath = "./knowledge-base"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}

	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "ragserver"
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = "dev"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
}
