package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"search-rag/internal/models"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 2 << 20
)

// Fetcher acquires raw bytes for one URL with a single static request.
// Retry policy belongs to the coordinator, not here.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// TypeFromURL guesses the payload type from the URL shape alone. Document
// links usually carry a format suffix or a /pdf/ path segment (arxiv style).
func TypeFromURL(rawURL string) models.PayloadType {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, "/pdf/"):
		return models.TypePDF
	case strings.HasSuffix(lower, ".docx"):
		return models.TypeDOCX
	default:
		return models.TypeUnknown
	}
}

func typeFromContentType(contentType string, hint models.PayloadType) models.PayloadType {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return models.TypePDF
	case strings.Contains(contentType, "wordprocessingml.document"):
		return models.TypeDOCX
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return models.TypeHTML
	default:
		return hint
	}
}

// Fetch issues one GET with the configured timeout and classifies the payload
// by URL hint and response headers. Non-2xx, timeout and connection failures
// come back as a *models.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (models.FetchResult, error) {
	result := models.FetchResult{URL: url, Method: models.MethodStatic}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result, &models.FetchError{URL: url, Kind: models.ErrFetchConnection, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		kind := models.ErrFetchConnection
		if errors.Is(err, context.DeadlineExceeded) {
			kind = models.ErrFetchTimeout
		}
		return result, &models.FetchError{URL: url, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &models.FetchError{URL: url, Status: resp.StatusCode, Kind: models.ErrFetchStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		kind := models.ErrFetchConnection
		if errors.Is(err, context.DeadlineExceeded) {
			kind = models.ErrFetchTimeout
		}
		return result, &models.FetchError{URL: url, Kind: kind, Err: err}
	}

	result.Payload = body
	result.DeclaredType = typeFromContentType(resp.Header.Get("Content-Type"), TypeFromURL(url))
	return result, nil
}
