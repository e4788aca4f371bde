// Package extractor converts fetched payloads into bounded-length plain text.
// Extraction failure never propagates past this boundary: a failed document
// carries a sentinel text instead, so one bad source cannot abort a batch.
package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"search-rag/internal/models"
)

type Extractor struct {
	maxContent int
}

func New(maxContent int) *Extractor {
	return &Extractor{maxContent: maxContent}
}

// Extract dispatches on the declared payload type. Unknown payloads are
// treated as markup, which is what most of them turn out to be.
func (e *Extractor) Extract(res models.FetchResult) models.Document {
	doc := models.Document{SourceURL: res.URL, Method: res.Method}

	text, err := e.extract(res)
	if err != nil || text == "" {
		log.Debug().Str("url", res.URL).Err(err).Msg("extraction failed")
		doc.Text = models.SentinelFetchError
		return doc
	}

	doc.Text = text
	doc.Success = true
	return doc
}

func (e *Extractor) extract(res models.FetchResult) (text string, err error) {
	// ledongthuc/pdf panics on some malformed documents; a corrupt payload
	// must degrade to a sentinel, not take the batch down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: panic: %v", models.ErrExtraction, r)
		}
	}()

	switch res.DeclaredType {
	case models.TypePDF:
		return e.extractPDF(res.Payload)
	case models.TypeDOCX:
		return e.extractDOCX(res.Payload)
	default:
		return e.extractHTML(res.Payload)
	}
}

// truncate applies the hard content cap. The cut is not sentence-aware; it
// only backs up far enough to keep the output valid UTF-8.
func (e *Extractor) truncate(text string) string {
	if len(text) <= e.maxContent {
		return text
	}
	cut := e.maxContent
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
