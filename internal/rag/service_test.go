package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanzheng/ragserver/internal/config"
	"github.com/alanzheng/ragserver/internal/vectorstore"
)

type mockModel struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockModel) Generate(_ context.Context, systemPrompt, userMessage string) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userMessage
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockSearchStore struct {
	results []vectorstore.SearchResult
	err     error
	lastK   int
	lastMin float32
}

func (m *mockSearchStore) AddDocuments(context.Context, []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (m *mockSearchStore) SimilaritySearch(_ context.Context, _ string, topK int, threshold float32) ([]vectorstore.SearchResult, error) {
	m.lastK = topK
	m.lastMin = threshold
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearchStore) Close() error { return nil }

func newTestService(store *mockSearchStore, model *mockModel, cfg config.RAGConfig) *Service {
	if cfg.TopK == 0 {
		cfg.TopK = 4
	}
	return NewService(cfg, NewRetriever(store, nil), model, nil)
}

func result(content, source string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		Content: content,
		Score:   score,
		Metadata: map[string]interface{}{
			vectorstore.MetaSource: source,
		},
	}
}

func TestAnswerBlankQuestion(t *testing.T) {
	model := &mockModel{}
	svc := newTestService(&mockSearchStore{}, model, config.RAGConfig{})

	for _, q := range []string{"", "   ", "\n"} {
		_, err := svc.Answer(context.Background(), q)
		assert.ErrorIs(t, err, ErrBlankQuestion)
	}
	assert.Zero(t, model.calls)
}

func TestAnswerNoDocumentsReturnsCannedAnswer(t *testing.T) {
	model := &mockModel{reply: "should not be used"}
	svc := newTestService(&mockSearchStore{}, model, config.RAGConfig{})

	answer, err := svc.Answer(context.Background(), "什么是向量数据库？")
	require.NoError(t, err)
	assert.Equal(t, "抱歉，知识库中没有找到与您的问题相关的信息。", answer)
	assert.Zero(t, model.calls, "model must not be called without context")
}

func TestAnswerStoreFailureDegradesToCannedAnswer(t *testing.T) {
	model := &mockModel{reply: "should not be used"}
	store := &mockSearchStore{err: errors.New("store unreachable")}
	svc := newTestService(store, model, config.RAGConfig{})

	answer, err := svc.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, NoContextAnswer, answer)
	assert.Zero(t, model.calls)
}

func TestAnswerBuildsContextInRetrievalOrder(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{
		result("first passage", "docs/a.md", 0.9),
		result("second passage", "docs/b.md", 0.7),
	}}
	model := &mockModel{reply: "the answer"}
	svc := newTestService(store, model, config.RAGConfig{})

	answer, err := svc.Answer(context.Background(), "my question")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	require.Equal(t, 1, model.calls)

	wantContext := "【来源：docs/a.md】\nfirst passage\n\n---\n\n【来源：docs/b.md】\nsecond passage"
	assert.Equal(t, fmt.Sprintf("知识库内容：\n%s\n\n用户问题：my question", wantContext), model.lastUser)
	assert.Equal(t, DefaultSystemPrompt, model.lastSystem)
}

func TestAnswerMissingSourceMetadata(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{
		{Content: "orphan passage", Score: 0.8},
	}}
	model := &mockModel{reply: "ok"}
	svc := newTestService(store, model, config.RAGConfig{})

	_, err := svc.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, model.lastUser, "【来源：未知来源】\norphan passage")
}

func TestAnswerCustomSystemPrompt(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.5)}}
	model := &mockModel{reply: "ok"}
	svc := newTestService(store, model, config.RAGConfig{SystemPrompt: "answer tersely"})

	_, err := svc.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answer tersely", model.lastSystem)
}

func TestAnswerModelFailure(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.5)}}
	boom := errors.New("model offline")
	svc := newTestService(store, &mockModel{err: boom}, config.RAGConfig{})

	_, err := svc.Answer(context.Background(), "q")
	require.Error(t, err)

	var answerErr *AnswerError
	require.ErrorAs(t, err, &answerErr)
	assert.Equal(t, "q", answerErr.Question)
	assert.ErrorIs(t, err, boom)
}

func TestAnswerWithParamsPassesRetrievalSettings(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.9)}}
	svc := newTestService(store, &mockModel{reply: "ok"}, config.RAGConfig{})

	_, err := svc.AnswerWithParams(context.Background(), "q", 7, 0.42)
	require.NoError(t, err)
	assert.Equal(t, 7, store.lastK)
	assert.InDelta(t, 0.42, store.lastMin, 1e-6)
}

func TestAnswerWithParamsNonPositiveTopKUsesDefault(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.9)}}
	svc := newTestService(store, &mockModel{reply: "ok"}, config.RAGConfig{TopK: 4})

	_, err := svc.AnswerWithParams(context.Background(), "q", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, store.lastK)
}

func TestAnswerWithParamsNegativeThresholdUsesConfigured(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.9)}}
	svc := newTestService(store, &mockModel{reply: "ok"}, config.RAGConfig{SimilarityThreshold: 0.35})

	_, err := svc.AnswerWithParams(context.Background(), "q", 3, -1)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, store.lastMin, 1e-6)
}

func TestAnswerWithParamsZeroThresholdDisablesFiltering(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{result("x", "s", 0.9)}}
	svc := newTestService(store, &mockModel{reply: "ok"}, config.RAGConfig{SimilarityThreshold: 0.35})

	_, err := svc.AnswerWithParams(context.Background(), "q", 3, 0)
	require.NoError(t, err)
	assert.Zero(t, store.lastMin)
}

func TestSearchDocuments(t *testing.T) {
	store := &mockSearchStore{results: []vectorstore.SearchResult{
		result("hit", "src", 0.8),
	}}
	svc := newTestService(store, &mockModel{}, config.RAGConfig{TopK: 4})

	results, err := svc.SearchDocuments(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hit", results[0].Content)
	assert.Equal(t, 2, store.lastK)
}

func TestSearchDocumentsBlankQuery(t *testing.T) {
	svc := newTestService(&mockSearchStore{}, &mockModel{}, config.RAGConfig{})

	_, err := svc.SearchDocuments(context.Background(), "  ", 4)
	assert.ErrorIs(t, err, ErrBlankQuery)
}

func TestBuildContextJoinsWithRule(t *testing.T) {
	got := buildContext([]vectorstore.SearchResult{
		result("a", "s1", 1),
		result("b", "s2", 1),
		result("c", "s3", 1),
	})
	assert.Equal(t, 2, strings.Count(got, "\n\n---\n\n"))
}
