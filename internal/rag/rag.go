// Package rag wires the pipeline end to end: search for candidate links,
// acquire and extract their content, index the usable text per session, and
// answer queries over the indexed sources.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"search-rag/internal/config"
	"search-rag/internal/llmservice"
	"search-rag/internal/models"
	"search-rag/internal/ranker"
	"search-rag/internal/retry"
	"search-rag/internal/sources"
)

// Scraper acquires documents for a batch of URLs. Results are positional:
// result i belongs to urls[i], failures carried as sentinel documents.
type Scraper interface {
	ScrapeAllRetry(ctx context.Context, urls []string, policy retry.Policy) []models.Document
}

// Searcher returns candidate {title, link} pairs for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Embedder embeds the query on the read path. The same gateway serves the
// store's write path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Pipeline struct {
	search   Searcher
	scraper  Scraper
	store    *sources.Store
	embedder Embedder
	ranker   *ranker.Ranker
	llm      llms.Model
	policy   retry.Policy
	topN     int
	thresh   float64
	window   int
}

func NewPipeline(search Searcher, scraper Scraper, store *sources.Store, embedder Embedder, llm llms.Model, cfg *config.Config) *Pipeline {
	return &Pipeline{
		search:   search,
		scraper:  scraper,
		store:    store,
		embedder: embedder,
		ranker:   ranker.New(cfg.RAG.TopN, cfg.RAG.Threshold()),
		llm:      llm,
		policy: retry.Policy{
			MaxAttempts: cfg.Scraper.RetryAttempts,
			BaseDelay:   cfg.Scraper.RetryBaseDelay(),
		},
		topN:   cfg.RAG.TopN,
		thresh: cfg.RAG.Threshold(),
		window: cfg.RAG.RecencyWindow,
	}
}

// Acquire fetches and extracts every URL concurrently. The slice is
// positional and complete: a URL that could not be fetched yields a sentinel
// document rather than a missing entry.
func (p *Pipeline) Acquire(ctx context.Context, urls []string) []models.Document {
	return p.scraper.ScrapeAllRetry(ctx, urls, p.policy)
}

// Index stores the usable entries under the session. Placeholder texts and
// per-record failures are skipped without aborting the batch.
func (p *Pipeline) Index(ctx context.Context, sessionID string, entries []models.SourceEntry) error {
	return p.store.Write(ctx, sessionID, entries)
}

// Retrieve returns the session's sources most similar to the query. When the
// backend can answer similarity queries natively that path is used; otherwise
// the session's records are scanned and ranked in memory. A recency window
// forces the scan path, since a native query ranks the whole session. An
// unreadable or empty store yields an empty result, not an error.
func (p *Pipeline) Retrieve(ctx context.Context, sessionID, query string) ([]models.RankedSource, error) {
	queryEmbedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if searcher, ok := p.store.Backend().(sources.Searcher); ok && p.window == 0 {
		ranked, err := searcher.Search(ctx, sessionID, queryEmbedding, p.topN, p.thresh)
		if err != nil {
			log.Warn().Str("session", sessionID).Err(err).Msg("native search failed, returning no sources")
			return []models.RankedSource{}, nil
		}
		return ranked, nil
	}

	records, err := p.store.Read(ctx, sessionID)
	if err != nil {
		log.Warn().Str("session", sessionID).Err(err).Msg("source read failed, returning no sources")
		return []models.RankedSource{}, nil
	}
	return p.ranker.Rank(queryEmbedding, records), nil
}

// Research runs the full ingest half of the pipeline: search for candidate
// links, acquire their content, and index it under the session. It returns
// the search hits so the caller can display which links were consulted.
func (p *Pipeline) Research(ctx context.Context, sessionID, query string) ([]models.SearchResult, error) {
	hits, err := p.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	urls := make([]string, len(hits))
	for i, hit := range hits {
		urls[i] = hit.Link
	}
	docs := p.Acquire(ctx, urls)

	entries := make([]models.SourceEntry, len(docs))
	for i, doc := range docs {
		entries[i] = models.SourceEntry{
			Title: hits[i].Title,
			Link:  hits[i].Link,
			Text:  doc.Text,
		}
	}
	if err := p.Index(ctx, sessionID, entries); err != nil {
		log.Warn().Str("session", sessionID).Err(err).Msg("some sources were not indexed")
	}
	return hits, nil
}

// EntriesFromDocuments adapts scraped documents for indexing when the caller
// supplies bare URLs and no search hit carries a title. The URL doubles as
// the title.
func EntriesFromDocuments(docs []models.Document) []models.SourceEntry {
	entries := make([]models.SourceEntry, len(docs))
	for i, doc := range docs {
		entries[i] = models.SourceEntry{
			Title: doc.SourceURL,
			Link:  doc.SourceURL,
			Text:  doc.Text,
		}
	}
	return entries
}

// Answer retrieves the sources relevant to the query and composes a cited
// response over them.
func (p *Pipeline) Answer(ctx context.Context, sessionID, query string) (*models.PromptResponse, error) {
	ranked, err := p.Retrieve(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}

	content, err := llmservice.GenerateContent(ctx, p.llm, buildMessages(query, ranked))
	if err != nil {
		return nil, err
	}

	return &models.PromptResponse{
		Query:   query,
		Sources: ranked,
		Content: content,
	}, nil
}

// Drop removes every source of the session.
func (p *Pipeline) Drop(ctx context.Context, sessionID string) error {
	return p.store.Drop(ctx, sessionID)
}

const systemPrompt = `You are a helpful assistant. Respond to the query using only the provided sources. Extract the points that directly answer the query, keep the answer short and accurate, and cite each piece of information with its source link in the format (source: link). If the sources do not cover the query, say so.`

func buildMessages(query string, ranked []models.RankedSource) []llms.MessageContent {
	var sb strings.Builder
	for _, src := range ranked {
		fmt.Fprintf(&sb, "Link: %s\nText: %s\n\n", src.Link, src.Text)
	}
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf("Sources:\n%s\nQuery: %s", sb.String(), query)),
	}
}
