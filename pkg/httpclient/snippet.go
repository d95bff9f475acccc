package httpclient

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetLen = 512

// BodySnippet trims a response body for logs and error messages. Long bodies
// are cut at a rune boundary at or before maxSnippetLen bytes.
func BodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) <= maxSnippetLen {
		return s
	}
	cut := maxSnippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// htmlTitle returns the <title> of an HTML body, typically a proxy or gateway
// error page, or "" when the body is not HTML.
func htmlTitle(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
