package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     QdrantConfig
		wantErr bool
	}{
		{"valid", QdrantConfig{URL: "http://localhost:6333", Collection: "kb", VectorSize: 384}, false},
		{"missing URL", QdrantConfig{Collection: "kb", VectorSize: 384}, true},
		{"missing collection", QdrantConfig{URL: "http://localhost:6333", VectorSize: 384}, true},
		{"zero vector size", QdrantConfig{URL: "http://localhost:6333", Collection: "kb"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToSchemaDocsLeavesInputMetadataUntouched(t *testing.T) {
	meta := map[string]interface{}{MetaSource: "notes.txt"}
	docs := []Document{{Content: "hello", Metadata: meta}}

	schemaDocs, ids := toSchemaDocs(docs)

	require.Len(t, schemaDocs, 1)
	require.Len(t, ids, 1)
	assert.Equal(t, ids[0], schemaDocs[0].Metadata["id"])

	assert.NotContains(t, meta, "id")
	assert.Equal(t, map[string]interface{}{MetaSource: "notes.txt"}, meta)
}

func TestToSchemaDocsAssignsIDs(t *testing.T) {
	docs := []Document{
		{ID: "fixed", Content: "a"},
		{Content: "b"},
	}

	schemaDocs, ids := toSchemaDocs(docs)

	assert.Equal(t, "fixed", ids[0])
	assert.NotEmpty(t, ids[1])
	assert.NotEqual(t, ids[0], ids[1])

	for i, doc := range schemaDocs {
		assert.Equal(t, ids[i], doc.Metadata["id"])
	}
}
