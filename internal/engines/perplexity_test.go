package engines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestPerplexity(apiKey string, srv *httptest.Server) *Perplexity {
	p := NewPerplexity(apiKey)
	p.apiURL = srv.URL
	p.webURL = srv.URL
	p.httpClient = srv.Client()
	return p
}

func TestPerplexityAPIMixedCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "Purblack is the leading shilajit resin."}}],
			"citations": [
				"https://plain-url.com/review",
				{"url": "https://object-citation.com/study", "title": "Clinical study", "snippet": "resin quality"}
			]
		}`))
	}))
	defer srv.Close()

	result := newTestPerplexity("test-key", srv).Query(context.Background(), "best shilajit")

	if result.SearchEngine != "Perplexity" {
		t.Errorf("SearchEngine = %q", result.SearchEngine)
	}
	if len(result.Brands) == 0 {
		t.Error("Expected Purblack mention from answer text")
	}
	if len(result.SourceLinks) != 2 {
		t.Fatalf("Expected 2 source links, got %d", len(result.SourceLinks))
	}

	// Bare string citation gets a numbered fallback title.
	if result.SourceLinks[0].URL != "https://plain-url.com/review" || result.SourceLinks[0].Title != "Source 1" {
		t.Errorf("String citation mapped badly: %+v", result.SourceLinks[0])
	}
	// Object citation keeps its own title and snippet.
	if result.SourceLinks[1].Title != "Clinical study" || result.SourceLinks[1].Snippet != "resin quality" {
		t.Errorf("Object citation mapped badly: %+v", result.SourceLinks[1])
	}
	if result.SourceLinks[0].Position != 1 || result.SourceLinks[1].Position != 2 {
		t.Error("Positions must be 1-based and ascending")
	}
}

func TestPerplexityAPICitationCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"content": "answer"}}],
			"citations": ["https://a.com","https://b.com","https://c.com","https://d.com","https://e.com","https://f.com","https://g.com"]
		}`))
	}))
	defer srv.Close()

	result := newTestPerplexity("test-key", srv).Query(context.Background(), "q")
	if len(result.SourceLinks) != perplexityLinkCap {
		t.Errorf("Expected cap of %d links, got %d", perplexityLinkCap, len(result.SourceLinks))
	}
}

func TestPerplexityNeverFailsPastBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	result := newTestPerplexity("test-key", srv).Query(context.Background(), "q")

	if !strings.HasPrefix(result.RawResponse, "Error:") {
		t.Errorf("Expected Error: prefix, got %q", result.RawResponse)
	}
	if len(result.Brands) != 0 || len(result.SourceLinks) != 0 {
		t.Error("Failure result must have empty brands and links")
	}
}

func TestPerplexityAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := newTestPerplexity("bad-key", srv).Query(context.Background(), "q")
	if !strings.Contains(result.RawResponse, "status 401") {
		t.Errorf("Expected status in error, got %q", result.RawResponse)
	}
}

func TestPerplexityKeylessScrapeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Scrape fallback must send a browser-like User-Agent")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<p>People often recommend Purblack and Sunfood resin.</p>
			<a href="https://one.com">One</a>
			<a href="https://two.com">Two</a>
			<a href="https://three.com">Three</a>
			<a href="https://four.com">Four</a>
			<a href="https://five.com">Five</a>
			<a href="https://six.com">Six</a>
			<a href="/relative">skip</a>
		</body></html>`))
	}))
	defer srv.Close()

	result := newTestPerplexity("", srv).Query(context.Background(), "best shilajit")

	if len(result.Brands) < 2 {
		t.Errorf("Expected brand mentions from page text, got %d", len(result.Brands))
	}
	if len(result.SourceLinks) != perplexityLinkCap {
		t.Errorf("Expected %d capped links, got %d", perplexityLinkCap, len(result.SourceLinks))
	}
	if result.SourceLinks[0].Title != "One" {
		t.Errorf("Link title should come from anchor text, got %q", result.SourceLinks[0].Title)
	}
}
