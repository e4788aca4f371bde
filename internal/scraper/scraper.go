// Package scraper turns a list of candidate URLs into the same number of
// extracted documents, order-preserving, under one shared concurrency budget.
package scraper

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"search-rag/internal/fetcher"
	"search-rag/internal/models"
	"search-rag/internal/retry"
)

// Fetcher is the static acquisition strategy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.FetchResult, error)
}

// Renderer is the headless-browser fallback strategy.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Extractor converts a fetched payload into a document. It never fails
// loudly: a bad payload comes back as an unsuccessful sentinel document.
type Extractor interface {
	Extract(res models.FetchResult) models.Document
}

// taskState is the per-URL acquisition state machine.
type taskState int

const (
	stateDetect taskState = iota
	stateFetchDocument
	stateFetchStatic
	stateRenderFallback
	stateDone
)

type Scraper struct {
	fetcher   Fetcher
	renderer  Renderer
	extractor Extractor
	pool      *ants.Pool
}

// New creates a scraper with a fixed-size worker pool. The pool is the only
// cross-task shared state: submission blocks while all workers are busy,
// which bounds in-flight sockets and browser processes independent of input
// size.
func New(f Fetcher, r Renderer, e Extractor, concurrency int) (*Scraper, error) {
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	return &Scraper{fetcher: f, renderer: r, extractor: e, pool: pool}, nil
}

func (s *Scraper) Close() {
	s.pool.Release()
}

// ScrapeAll processes every URL and returns exactly len(urls) documents whose
// indices correspond to the input indices, regardless of completion order.
// A failed URL degrades to a sentinel document; it never errors the batch.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) []models.Document {
	results := make([]models.Document, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		i, url := i, url
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.scrapeOne(ctx, url)
		}); err != nil {
			wg.Done()
			log.Error().Err(err).Str("url", url).Msg("failed to submit scrape task")
			results[i] = sentinelDoc(url, models.MethodStatic)
		}
	}
	wg.Wait()
	return results
}

// ScrapeAllRetry wraps each per-URL state machine in the retry policy. Used
// by call sites that trade latency for reliability, such as document-only
// batches.
func (s *Scraper) ScrapeAllRetry(ctx context.Context, urls []string, policy retry.Policy) []models.Document {
	results := make([]models.Document, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		i, url := i, url
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			var doc models.Document
			retryErr := policy.Do(ctx, func() error {
				doc = s.scrapeOne(ctx, url)
				if !doc.Success {
					return errors.New(doc.Text)
				}
				return nil
			})
			if retryErr != nil && doc.SourceURL == "" {
				doc = sentinelDoc(url, models.MethodStatic)
			}
			results[i] = doc
		}); err != nil {
			wg.Done()
			results[i] = sentinelDoc(url, models.MethodStatic)
		}
	}
	wg.Wait()
	return results
}

// scrapeOne walks one URL through the acquisition state machine. Every exit
// path produces a document; failures degrade to the sentinel text.
func (s *Scraper) scrapeOne(ctx context.Context, url string) models.Document {
	var doc models.Document
	state := stateDetect

	for state != stateDone {
		switch state {
		case stateDetect:
			switch fetcher.TypeFromURL(url) {
			case models.TypePDF, models.TypeDOCX:
				state = stateFetchDocument
			default:
				state = stateFetchStatic
			}

		case stateFetchDocument:
			// No render fallback for documents: a browser cannot
			// improve a failed PDF download.
			res, err := s.fetcher.Fetch(ctx, url)
			if err != nil {
				log.Debug().Str("url", url).Err(err).Msg("document fetch failed")
				doc = sentinelDoc(url, models.MethodStatic)
			} else {
				doc = s.extractor.Extract(res)
			}
			state = stateDone

		case stateFetchStatic:
			res, err := s.fetcher.Fetch(ctx, url)
			if err != nil {
				log.Debug().Str("url", url).Err(err).Msg("static fetch failed, falling back to render")
				state = stateRenderFallback
				break
			}
			if res.DeclaredType == models.TypePDF || res.DeclaredType == models.TypeDOCX {
				// The header revealed a document the URL shape hid.
				doc = s.extractor.Extract(res)
				state = stateDone
				break
			}
			if d := s.extractor.Extract(res); d.Success {
				doc = d
				state = stateDone
			} else {
				state = stateRenderFallback
			}

		case stateRenderFallback:
			html, err := s.renderer.Render(ctx, url)
			if err != nil {
				log.Debug().Str("url", url).Err(err).Msg("render fallback failed")
				doc = sentinelDoc(url, models.MethodRendered)
			} else {
				doc = s.extractor.Extract(models.FetchResult{
					URL:          url,
					Payload:      []byte(html),
					DeclaredType: models.TypeHTML,
					Method:       models.MethodRendered,
				})
			}
			state = stateDone
		}
	}
	return doc
}

func sentinelDoc(url string, method models.FetchMethod) models.Document {
	return models.Document{
		SourceURL: url,
		Text:      models.SentinelFetchError,
		Method:    method,
	}
}
