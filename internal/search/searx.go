// Package search talks to the upstream search engine that supplies candidate
// {title, link} pairs for a query. Only the links feed the pipeline; titles
// pass through for display.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"search-rag/internal/config"
	"search-rag/internal/models"
	"search-rag/internal/retry"
)

type Client struct {
	baseURL    string
	maxResults int
	policy     retry.Policy
	httpClient *http.Client
}

func NewClient(cfg *config.SearchConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		maxResults: cfg.MaxResults,
		policy: retry.Policy{
			MaxAttempts: cfg.Attempts,
			BaseDelay:   time.Second,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searxResponse struct {
	Results []models.SearchResult `json:"results"`
}

// Search queries the engine and returns up to maxResults hits. Failed or
// empty responses are retried with backoff before giving up.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	err := c.policy.Do(ctx, func() error {
		var err error
		results, err = c.searchOnce(ctx, query)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no search results for %q", query)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	log.Debug().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	var parsed searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Results, nil
}
