package httpclient

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBodySnippetCutsAtRuneBoundary(t *testing.T) {
	// One ASCII byte shifts every three-byte rune off the cut point.
	body := "x" + strings.Repeat("€", maxSnippetLen)
	got := BodySnippet([]byte(body))
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8")
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got[len(got)-8:])
	}
	if n := len(strings.TrimSuffix(got, "...")); n > maxSnippetLen || n < maxSnippetLen-utf8.UTFMax {
		t.Fatalf("unexpected snippet length %d", n)
	}
}

func TestBodySnippetShortAndEmpty(t *testing.T) {
	if got := BodySnippet([]byte("  ok  ")); got != "ok" {
		t.Fatalf("got %q", got)
	}
	if got := BodySnippet(nil); got != "<empty>" {
		t.Fatalf("got %q", got)
	}
}

func TestHTMLTitle(t *testing.T) {
	if got := htmlTitle([]byte("<html><head><title> Bad Gateway </title></head></html>")); got != "Bad Gateway" {
		t.Fatalf("got %q", got)
	}
	if got := htmlTitle([]byte(`{"a":1}`)); got != "" {
		t.Fatalf("expected no title for JSON, got %q", got)
	}
}
