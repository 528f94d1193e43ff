// Package chat provides conversational access to the chat model.
package chat

import (
	"context"
	"errors"
)

// Sentinel errors for chat operations.
var (
	// ErrBlankMessage indicates a blank user message.
	ErrBlankMessage = errors.New("message cannot be blank")

	// ErrEmptyResponse indicates the model returned nothing usable.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Model generates text from a system prompt and a user message.
//
// Implementations talk to an LLM endpoint. A blank systemPrompt means no
// system message is sent. Implementations return ErrEmptyResponse when the
// model produces a blank answer.
type Model interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}
