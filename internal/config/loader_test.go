package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, 384, cfg.VectorStore.VectorSize)
	assert.Equal(t, "./knowledge-base", cfg.Ingest.KnowledgeBasePath)
	assert.False(t, cfg.Ingest.ChunkDocuments)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, 0.0, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, "ragserver", cfg.Telemetry.ServiceName)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Empty(t, cfg.Telemetry.TraceEndpoint)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9191
rag:
  top_k: 8
  similarity_threshold: 0.5
ingest:
  knowledge_base_path: /tmp/kb
  chunk_documents: true
  chunk_size: 500
  chunk_overlap: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, "/tmp/kb", cfg.Ingest.KnowledgeBasePath)
	assert.True(t, cfg.Ingest.ChunkDocuments)
	assert.Equal(t, 500, cfg.Ingest.ChunkSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  top_k: 8\n"), 0o600))

	t.Setenv("RAG_TOP_K", "16")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.RAG.TopK)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad provider", func(c *Config) { c.VectorStore.Provider = "pinecone" }},
		{"bad top_k", func(c *Config) { c.RAG.TopK = 0 }},
		{"threshold above one", func(c *Config) { c.RAG.SimilarityThreshold = 1.5 }},
		{"chunk overlap >= size", func(c *Config) {
			c.Ingest.ChunkDocuments = true
			c.Ingest.ChunkSize = 100
			c.Ingest.ChunkOverlap = 100
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-very-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "sk-very-secret", s.Value())
	assert.True(t, s.IsSet())

	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "very-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
