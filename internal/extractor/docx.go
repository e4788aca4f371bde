package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"search-rag/internal/models"
)

// extractDOCX pulls the text runs out of a word-processing document.
func (e *Extractor) extractDOCX(payload []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	text := cleanText(textRuns(content))
	if text == "" {
		return "", fmt.Errorf("%w: no text in document", models.ErrExtraction)
	}
	return e.truncate(text), nil
}

// textRuns extracts <w:t> run contents from the document XML, one line per
// paragraph.
func textRuns(xmlContent string) string {
	var sb strings.Builder
	for _, para := range strings.Split(xmlContent, "</w:p>") {
		var line strings.Builder
		parts := strings.Split(para, "<w:t")
		for i, part := range parts {
			if i == 0 {
				continue
			}
			start := strings.Index(part, ">")
			if start < 0 {
				continue
			}
			end := strings.Index(part, "</w:t>")
			if end > start {
				line.WriteString(part[start+1 : end])
			}
		}
		if line.Len() > 0 {
			sb.WriteString(line.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
