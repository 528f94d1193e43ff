package rag

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBlankQuery is returned when a search query is empty or whitespace.
	ErrBlankQuery = errors.New("query cannot be blank")

	// ErrBlankQuestion is returned when a question is empty or whitespace.
	ErrBlankQuestion = errors.New("question cannot be blank")
)

// AnswerError reports a failed answer generation along with how long the
// attempt took.
type AnswerError struct {
	Question string
	Elapsed  time.Duration
	Err      error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answering %q after %s: %v", e.Question, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *AnswerError) Unwrap() error {
	return e.Err
}
