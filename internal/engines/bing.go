// internal/engines/bing.go
package engines

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const bingLinkCap = 5

// BingChat scrapes the public Bing results page.
type BingChat struct {
	baseURL    string
	httpClient *http.Client
}

func NewBingChat() *BingChat {
	return &BingChat{
		baseURL:    "https://www.bing.com",
		httpClient: newHTTPClient(),
	}
}

func (b *BingChat) Name() string {
	return "Bing Chat"
}

func (b *BingChat) Query(ctx context.Context, query string) *models.SearchResult {
	result := newResult(query, b.Name())

	searchURL := fmt.Sprintf("%s/search?q=%s", b.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return errorResult(query, b.Name(), err.Error())
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		fmt.Printf("[BingChat] ⚠️ request failed: %v\n", err)
		return errorResult(query, b.Name(), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(query, b.Name(), fmt.Sprintf("Bing returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return errorResult(query, b.Name(), fmt.Sprintf("failed to parse Bing page: %v", err))
	}

	text := doc.Find("body").Text()
	result.RawResponse = text
	result.Brands = append(result.Brands, brands.Extract(text)...)

	doc.Find(".b_algo, .b_title").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(result.SourceLinks) >= bingLinkCap {
			return false
		}
		linkEl := s.Find("a").First()
		href, ok := linkEl.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
			return true
		}
		title := strings.TrimSpace(s.Find("h2, .b_title").First().Text())
		if title == "" {
			title = strings.TrimSpace(linkEl.Text())
		}
		if title == "" {
			title = fmt.Sprintf("Result %d", i+1)
		}
		result.SourceLinks = append(result.SourceLinks, models.SourceLink{
			URL:      href,
			Title:    title,
			Snippet:  strings.TrimSpace(s.Find(".b_caption p, .b_snippet").First().Text()),
			Position: len(result.SourceLinks) + 1,
		})
		return true
	})

	// Fallback: any outbound link that isn't Bing/Microsoft's own
	if len(result.SourceLinks) == 0 {
		doc.Find(`a[href^="http"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if len(result.SourceLinks) >= bingLinkCap {
				return false
			}
			href, ok := s.Attr("href")
			if !ok || !strings.HasPrefix(href, "http") ||
				strings.Contains(href, "bing.com") || strings.Contains(href, "microsoft.com") {
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

	result.SourceLinks = capLinks(result.SourceLinks, bingLinkCap)
	return result
}
