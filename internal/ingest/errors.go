package ingest

import (
	"errors"
	"fmt"
	"time"
)

// ErrBlankText indicates an upload with no text content.
var ErrBlankText = errors.New("text cannot be blank")

// IngestError reports a failed ingestion run along with how long the run
// took before failing.
type IngestError struct {
	Path    string
	Elapsed time.Duration
	Err     error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingesting %s after %s: %v", e.Path, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
