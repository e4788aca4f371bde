package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"search-rag/internal/models"
)

var (
	// Headings that open boilerplate sections; the section runs until the
	// next blank line.
	boilerplateHeading = regexp.MustCompile(`(?i)^(acknowledgements?|references|navigation)\b`)
	blankRun           = regexp.MustCompile(`\n\s*\n`)
)

// extractHTML isolates the primary content region of a markup payload and
// returns the page title followed by its paragraph text.
func (e *Extractor) extractHTML(payload []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, iframe, svg, nav, header, footer, aside").Remove()

	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Find("article").First()
	}
	if main.Length() == 0 {
		main = doc.Find("body").First()
	}
	if main.Length() == 0 {
		return "", fmt.Errorf("%w: no content region", models.ErrExtraction)
	}

	var sb strings.Builder
	sb.WriteString(title)
	main.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			sb.WriteString("\n")
			sb.WriteString(text)
		}
	})

	text := cleanText(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty content region", models.ErrExtraction)
	}
	return e.truncate(text), nil
}

// cleanText strips boilerplate sections, collapses blank-line runs and trims.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if skipping {
			if trimmed == "" {
				skipping = false
			}
			continue
		}
		if boilerplateHeading.MatchString(trimmed) {
			skipping = true
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	out = blankRun.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}
