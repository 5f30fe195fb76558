// Package textextract pulls plain text out of rendered PDF documents, used
// to build preview snippets for generated style guides.
package textextract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	Content string
	Pages   int
}

// FromPDF extracts the text of every page. Pages that fail to decode are
// skipped rather than failing the whole document.
func FromPDF(data []byte) (*ExtractedText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   numPages,
	}, nil
}

// Snippet collapses whitespace and truncates the content to at most max
// runes, appending an ellipsis when trimmed.
func Snippet(content string, max int) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(collapsed) <= max {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
