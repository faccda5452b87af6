package email

import (
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Your data export\n\nDownload link: [export](https://example.com/exports/abc?token=x)")
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	if !strings.Contains(html, "<h1>Your data export</h1>") {
		t.Errorf("expected heading in output, got %q", html)
	}
	if !strings.Contains(html, `<a href="https://example.com/exports/abc?token=x">export</a>`) {
		t.Errorf("expected link in output, got %q", html)
	}
}

func TestRenderHTML_EscapesRawHTML(t *testing.T) {
	html, err := RenderHTML(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	if strings.Contains(html, "<script>") {
		t.Errorf("expected raw HTML to be escaped, got %q", html)
	}
}
