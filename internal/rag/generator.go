package rag

import (
	"fmt"
	"strings"

	"github.com/alanzheng/ragserver/internal/vectorstore"
)

// NoContextAnswer is returned verbatim when retrieval yields no documents.
// The model is never called in that case.
const NoContextAnswer = "抱歉，知识库中没有找到与您的问题相关的信息。"

// DefaultSystemPrompt instructs the model to answer strictly from the
// supplied knowledge base context.
const DefaultSystemPrompt = "你是一个知识库问答助手。请严格根据提供的知识库内容回答用户的问题。" +
	"如果知识库内容中没有相关信息，请直接说明无法从知识库中找到答案，不要编造内容。" +
	"回答时请注明信息来源。"

const unknownSource = "未知来源"

// buildContext formats retrieved documents into the context block fed to
// the model. Each document is prefixed with its source and blocks are
// separated by a horizontal rule.
func buildContext(results []vectorstore.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		source := unknownSource
		if s, ok := r.Metadata[vectorstore.MetaSource].(string); ok && s != "" {
			source = s
		}
		blocks = append(blocks, fmt.Sprintf("【来源：%s】\n%s", source, r.Content))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// buildUserMessage combines the context block and the user's question.
func buildUserMessage(contextBlock, question string) string {
	return fmt.Sprintf("知识库内容：\n%s\n\n用户问题：%s", contextBlock, question)
}
