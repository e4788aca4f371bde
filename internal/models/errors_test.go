package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchErrorUnwrapKeepsCause(t *testing.T) {
	err := error(&FetchError{
		URL:  "https://example.com",
		Kind: ErrFetchTimeout,
		Err:  context.DeadlineExceeded,
	})

	assert.True(t, errors.Is(err, ErrFetchTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchErrorUnwrapWithoutCause(t *testing.T) {
	err := error(&FetchError{
		URL:    "https://example.com",
		Status: 503,
		Kind:   ErrFetchStatus,
	})

	assert.True(t, errors.Is(err, ErrFetchStatus))
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
