package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt renders a description for display: markup stripped, whitespace
// collapsed, cut to at most n runes. The item itself is never modified.
func Excerpt(description string, n int) string {
	text := description
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
