// internal/engines/google.go
package engines

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const googleLinkCap = 10

const googleBlockedMessage = "Google Search is blocking automated requests. Please use Google Custom Search API or access Google Search manually."

// GoogleAIOverview scrapes the public Google results page, preferring the AI
// Overview block when one is rendered and falling back to organic results.
type GoogleAIOverview struct {
	baseURL    string
	httpClient *http.Client
}

func NewGoogleAIOverview() *GoogleAIOverview {
	return &GoogleAIOverview{
		baseURL:    "https://www.google.com",
		httpClient: newHTTPClient(),
	}
}

func (g *GoogleAIOverview) Name() string {
	return "Google AI Overview"
}

func (g *GoogleAIOverview) Query(ctx context.Context, query string) *models.SearchResult {
	result := newResult(query, g.Name())

	searchURL := fmt.Sprintf("%s/search?q=%s&hl=en", g.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return errorResult(query, g.Name(), err.Error())
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		fmt.Printf("[GoogleAIOverview] ⚠️ request failed: %v\n", err)
		return errorResult(query, g.Name(),
			err.Error()+". Google Search may be blocking automated requests. Consider using Google Custom Search API.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(query, g.Name(), err.Error())
	}
	html := string(body)

	if googleBlocked(html) {
		result.RawResponse = googleBlockedMessage
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return errorResult(query, g.Name(), fmt.Sprintf("failed to parse Google page: %v", err))
	}

	aiOverview := strings.TrimSpace(doc.Find(`#AIOverview, .kp-blk, [data-ved*="AI"]`).First().Text())
	if aiOverview == "" {
		aiOverview = strings.TrimSpace(doc.Find(".hgKElc, .LGOjhe").First().Text())
	}

	// Primary organic-result containers
	doc.Find(".g, .tF2Cxc").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(result.SourceLinks) >= googleLinkCap {
			return false
		}
		linkEl := s.Find(`a[href^="http"]`).First()
		href, ok := linkEl.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
			return true
		}
		title := strings.TrimSpace(s.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(linkEl.Text())
		}
		if title == "" {
			title = fmt.Sprintf("Result %d", i+1)
		}
		result.SourceLinks = append(result.SourceLinks, models.SourceLink{
			URL:      href,
			Title:    title,
			Snippet:  strings.TrimSpace(s.Find(".VwiC3b, .s").First().Text()),
			Position: len(result.SourceLinks) + 1,
		})
		return true
	})

	// Fallback selector set: any outbound link that isn't Google's own
	if len(result.SourceLinks) == 0 {
		doc.Find(`a[href^="http"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if len(result.SourceLinks) >= googleLinkCap {
				return false
			}
			href, ok := s.Attr("href")
			if !ok || !strings.HasPrefix(href, "http") || strings.Contains(href, "google.com") {
				return true
			}
			title := strings.TrimSpace(s.Text())
			if title == "" {
				title, _ = s.Attr("title")
			}
			if title == "" {
				title = fmt.Sprintf("Source %d", i+1)
			}
			result.SourceLinks = append(result.SourceLinks, models.SourceLink{
				URL:      href,
				Title:    title,
				Position: len(result.SourceLinks) + 1,
			})
			return true
		})
	}

	switch {
	case aiOverview != "":
		result.RawResponse = aiOverview
		result.Brands = append(result.Brands, brands.Extract(aiOverview)...)
	case len(result.SourceLinks) > 0:
		result.RawResponse = fmt.Sprintf("Found %d search results for %q", len(result.SourceLinks), query)
		// No overview text, so mine the result titles and snippets instead.
		var sb strings.Builder
		for _, link := range result.SourceLinks {
			sb.WriteString(link.Title)
			sb.WriteString(" ")
			sb.WriteString(link.Snippet)
			sb.WriteString(" ")
		}
		result.Brands = append(result.Brands, brands.Extract(sb.String())...)
	default:
		result.RawResponse = "No results found. Google may be blocking automated requests."
	}

	result.SourceLinks = capLinks(result.SourceLinks, googleLinkCap)
	return result
}

// googleBlocked detects challenge/redirect pages heuristically so callers can
// tell "blocked" apart from a plain network failure.
func googleBlocked(html string) bool {
	return strings.Contains(html, "enablejs") ||
		strings.Contains(html, "Please click") ||
		strings.Contains(html, `http-equiv="refresh"`) ||
		strings.Contains(html, "sourceMappingURL") ||
		len(html) < 1000
}
