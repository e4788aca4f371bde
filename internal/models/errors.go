package models

import (
	"errors"
	"fmt"
)

// Failure categories shared across the pipeline. Call sites branch on these
// with errors.Is; the concrete cause stays wrapped underneath.
var (
	ErrFetchTimeout       = errors.New("fetch timed out")
	ErrFetchConnection    = errors.New("connection failed")
	ErrFetchStatus        = errors.New("non-success status")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrExtraction         = errors.New("extraction failed")
	ErrEmbeddingProvider  = errors.New("embedding provider error")
	ErrStorage            = errors.New("storage error")
)

// FetchError is a typed failure for a single fetch attempt.
type FetchError struct {
	URL    string
	Status int
	Kind   error // one of ErrFetchTimeout, ErrFetchConnection, ErrFetchStatus
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes both the category and the concrete cause, so errors.Is
// matches ErrFetchTimeout and context.DeadlineExceeded alike.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
