package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/document"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

type mockStore struct {
	added  [][]vectorstore.Document
	addErr error
}

func (m *mockStore) AddDocuments(_ context.Context, docs []vectorstore.Document) ([]string, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	if len(docs) == 0 {
		return nil, vectorstore.ErrEmptyDocuments
	}
	m.added = append(m.added, docs)
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	return ids, nil
}

func (m *mockStore) SimilaritySearch(context.Context, string, int, float32) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

func newTestService(t *testing.T, cfg config.IngestConfig, store vectorstore.Store) *Service {
	t.Helper()
	return NewService(cfg, document.NewLoader(nil), store, nil)
}

func TestIngestAllCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kb")
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{KnowledgeBasePath: root}, store)

	n, err := svc.IngestAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.added)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestIngestAllEmptyRoot(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{KnowledgeBasePath: t.TempDir()}, store)

	n, err := svc.IngestAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestAllStoresDocuments(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("beta"), 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{KnowledgeBasePath: root}, store)

	n, err := svc.IngestAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.added, 1)
	require.Len(t, store.added[0], 2)

	sources := make([]string, 2)
	for i, doc := range store.added[0] {
		sources[i] = doc.Source()
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.md"),
	}, sources)
}

func TestIngestAllStoreFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))

	boom := errors.New("store down")
	svc := newTestService(t, config.IngestConfig{KnowledgeBasePath: root}, &mockStore{addErr: boom})

	_, err := svc.IngestAll(context.Background())
	require.Error(t, err)

	var ingestErr *IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, root, ingestErr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	n, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestFileMissing(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{}, &mockStore{})

	_, err := svc.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrNotFound)

	var ingestErr *IngestError
	assert.ErrorAs(t, err, &ingestErr)
}

func TestIngestFileUnrecognizedContentReturnsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}, 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	n, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.added, "store should not see an empty batch")
}

func TestIngestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("beta"), 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	n, err := svc.IngestDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.added, 1)
}

func TestIngestDirMissing(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	_, err := svc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrNotFound)
	assert.Empty(t, store.added)
}

func TestIngestText(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	n, err := svc.IngestText(context.Background(), "向量化测试文本", "api-upload")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, store.added, 1)
	require.Len(t, store.added[0], 1)
	doc := store.added[0][0]
	assert.Equal(t, "向量化测试文本", doc.Content)
	assert.Equal(t, "api-upload", doc.Source())
	assert.Equal(t, "upload", doc.Metadata["type"])
}

func TestIngestTextDefaultSource(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	_, err := svc.IngestText(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Len(t, store.added, 1)
	assert.Equal(t, uploadSource, store.added[0][0].Source())
}

func TestIngestTextBlank(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{}, store)

	_, err := svc.IngestText(context.Background(), "   ", "src")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlankText)
	assert.Empty(t, store.added)
}

func TestIngestFileChunked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := ""
	for i := 0; i < 50; i++ {
		content += fmt.Sprintf("Sentence number %d with some padding words to make it longer.\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{
		ChunkDocuments: true,
		ChunkSize:      200,
		ChunkOverlap:   20,
	}, store)

	n, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Greater(t, n, 1)

	require.Len(t, store.added, 1)
	for _, doc := range store.added[0] {
		assert.Equal(t, path, doc.Metadata[vectorstore.MetaSource])
		assert.NotEmpty(t, doc.Content)
	}
}

func TestIngestFileChunkingDisabledKeepsWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := ""
	for i := 0; i < 50; i++ {
		content += fmt.Sprintf("Sentence number %d with some padding words to make it longer.\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := &mockStore{}
	svc := newTestService(t, config.IngestConfig{ChunkDocuments: false}, store)

	n, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
