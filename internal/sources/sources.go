// Package sources is the durable per-session source store: the write path
// filters placeholder text and attaches embeddings, the read path returns a
// recency-windowed scan in insertion order.
package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"search-rag/internal/models"
)

// Backend is the persistence boundary: append-only insert plus an
// insertion-ordered scan. Records are never updated in place.
type Backend interface {
	Insert(ctx context.Context, src models.Source) error
	Scan(ctx context.Context, sessionID string, window int) ([]models.Source, error)
	DropSession(ctx context.Context, sessionID string) error
}

// Searcher is an optional backend upgrade: a store that can answer
// similarity queries natively (e.g. a vector database) instead of handing
// records to the linear ranker.
type Searcher interface {
	Search(ctx context.Context, sessionID string, queryEmbedding []float32, topN int, threshold float64) ([]models.RankedSource, error)
}

// Embedder is the gateway used by the write path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Store struct {
	backend  Backend
	embedder Embedder
	window   int // recency window for reads; 0 means all records
}

func New(backend Backend, embedder Embedder, window int) *Store {
	return &Store{backend: backend, embedder: embedder, window: window}
}

// Backend exposes the underlying persistence for capability checks.
func (s *Store) Backend() Backend { return s.backend }

// Write appends one record per entry whose text is usable. Placeholder and
// sentinel texts are dropped before the embedding call; a provider or insert
// failure for one entry skips that entry only. The returned error joins the
// per-record failures, with every sibling already written.
func (s *Store) Write(ctx context.Context, sessionID string, entries []models.SourceEntry) error {
	var errs []error
	stored := 0
	for _, entry := range entries {
		if models.IsPlaceholder(entry.Text) {
			continue
		}
		vec, err := s.embedder.Embed(ctx, entry.Text)
		if err != nil {
			log.Warn().Str("link", entry.Link).Err(err).Msg("skipping source, embedding failed")
			errs = append(errs, err)
			continue
		}
		src := models.Source{
			SessionID: sessionID,
			Title:     entry.Title,
			Link:      entry.Link,
			Text:      entry.Text,
			Embedding: vec,
		}
		if err := s.backend.Insert(ctx, src); err != nil {
			log.Warn().Str("link", entry.Link).Err(err).Msg("skipping source, insert failed")
			errs = append(errs, fmt.Errorf("%w: %v", models.ErrStorage, err))
			continue
		}
		stored++
	}
	log.Debug().Str("session", sessionID).Int("stored", stored).Int("candidates", len(entries)).Msg("sources written")
	return errors.Join(errs...)
}

// Read returns the session's records in insertion order, limited to the
// configured recency window.
func (s *Store) Read(ctx context.Context, sessionID string) ([]models.Source, error) {
	records, err := s.backend.Scan(ctx, sessionID, s.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return records, nil
}

// Drop removes every record of the session. Part of session teardown.
func (s *Store) Drop(ctx context.Context, sessionID string) error {
	if err := s.backend.DropSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}
