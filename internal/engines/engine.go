// internal/engines/engine.go
package engines

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// Engine is one backend-specific adapter that converts a vendor's API or HTML
// response into the common SearchResult shape.
//
// Query never fails past the adapter boundary: every internal error (missing
// credential, network failure, blocked scrape, malformed upstream payload) is
// folded into the returned result's RawResponse as "Error: <message>" with
// empty Brands and SourceLinks. A panic escaping Query is a contract
// violation, handled by the fan-out coordinator.
type Engine interface {
	Name() string
	Query(ctx context.Context, query string) *models.SearchResult
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// newResult builds an empty, well-formed result stamped with call time.
func newResult(query, engine string) *models.SearchResult {
	return &models.SearchResult{
		Query:        query,
		SearchEngine: engine,
		Timestamp:    time.Now().UTC(),
		Brands:       []models.BrandMention{},
		SourceLinks:  []models.SourceLink{},
	}
}

// errorResult folds a failure into a valid result.
func errorResult(query, engine, message string) *models.SearchResult {
	result := newResult(query, engine)
	result.RawResponse = "Error: " + message
	return result
}

// urlPattern matches raw URLs inside free text, stopping at whitespace and
// closing parens so markdown-style "(https://...)" citations parse cleanly.
var urlPattern = regexp.MustCompile(`https?://[^\s)]+`)

// linksFromText regex-extracts up to limit raw URLs from free text. Title is
// the URL hostname, falling back to a numbered label when parsing fails.
func linksFromText(text string, limit int) []models.SourceLink {
	links := []models.SourceLink{}
	for _, raw := range urlPattern.FindAllString(text, -1) {
		if len(links) >= limit {
			break
		}
		title := fmt.Sprintf("Source %d", len(links)+1)
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			title = u.Hostname()
		}
		links = append(links, models.SourceLink{
			URL:      raw,
			Title:    title,
			Position: len(links) + 1,
		})
	}
	return links
}

// capLinks enforces an adapter's sourceLinks cap.
func capLinks(links []models.SourceLink, limit int) []models.SourceLink {
	if len(links) > limit {
		return links[:limit]
	}
	return links
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
