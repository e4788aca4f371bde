package models

// SentinelFetchError stands in for "extraction failed" so that error text is
// recognizable downstream and never embedded or stored.
const SentinelFetchError = "Error fetching content."

// PlaceholderTexts are known-bad extraction outputs (bot walls, consent pages)
// that must never be persisted as source text.
var PlaceholderTexts = []string{
	SentinelFetchError,
	"Enable JavaScript and cookies to continue",
	"Please enable JS and disable any ad blocker",
	"Access Denied",
}

// IsPlaceholder reports whether text is empty or one of the known-bad outputs.
func IsPlaceholder(text string) bool {
	if text == "" {
		return true
	}
	for _, p := range PlaceholderTexts {
		if text == p {
			return true
		}
	}
	return false
}

// SourceEntry is one candidate for indexing: a search hit zipped with its
// extracted text.
type SourceEntry struct {
	Title string
	Link  string
	Text  string
}

// Source is a persisted source record. Records are append-only: never mutated
// after insert, deleted only by session teardown.
type Source struct {
	ID        int64
	SessionID string
	Title     string
	Link      string
	Text      string
	Embedding []float32
}

// RankedSource is an ephemeral projection of a selected Source, ordered by
// similarity to the query.
type RankedSource struct {
	Title      string
	Link       string
	Text       string
	Similarity float64
}

// SearchResult is one hit from the upstream search engine.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"url"`
}

// PromptResponse is the answer-composition output returned to the caller.
type PromptResponse struct {
	Query   string
	Sources []RankedSource
	Content string
}
