// internal/engines/perplexity.go
package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const perplexityLinkCap = 5

// Perplexity queries the Perplexity citation API when a key is available and
// falls back to a best-effort scrape of the public search page otherwise.
type Perplexity struct {
	apiKey     string
	apiURL     string
	webURL     string
	httpClient *http.Client
}

func NewPerplexity(apiKey string) *Perplexity {
	return &Perplexity{
		apiKey:     apiKey,
		apiURL:     "https://api.perplexity.ai/chat/completions",
		webURL:     "https://www.perplexity.ai/search",
		httpClient: newHTTPClient(),
	}
}

func (p *Perplexity) Name() string {
	return "Perplexity"
}

// Perplexity API request/response structures
type perplexityRequest struct {
	Model           string              `json:"model"`
	Messages        []perplexityMessage `json:"messages"`
	ReturnCitations bool                `json:"return_citations"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Citations come back as either bare URL strings or objects with
	// url/title/snippet fields depending on model version, so decode lazily.
	Citations []json.RawMessage `json:"citations"`
}

type perplexityCitation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

func (p *Perplexity) Query(ctx context.Context, query string) *models.SearchResult {
	if p.apiKey != "" {
		return p.queryAPI(ctx, query)
	}
	return p.scrapeWeb(ctx, query)
}

func (p *Perplexity) queryAPI(ctx context.Context, query string) *models.SearchResult {
	result := newResult(query, p.Name())

	payload := perplexityRequest{
		Model:           "llama-3.1-sonar-large-128k-online",
		Messages:        []perplexityMessage{{Role: "user", Content: query}},
		ReturnCitations: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errorResult(query, p.Name(), err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return errorResult(query, p.Name(), err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Printf("[Perplexity] ⚠️ API request failed: %v\n", err)
		return errorResult(query, p.Name(), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(query, p.Name(), fmt.Sprintf("Perplexity API returned status %d", resp.StatusCode))
	}

	var apiResp perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return errorResult(query, p.Name(), fmt.Sprintf("failed to decode Perplexity response: %v", err))
	}

	if len(apiResp.Choices) > 0 {
		result.RawResponse = apiResp.Choices[0].Message.Content
	}
	result.Brands = append(result.Brands, brands.Extract(result.RawResponse)...)

	for i, raw := range apiResp.Citations {
		link := models.SourceLink{
			Title:    fmt.Sprintf("Source %d", i+1),
			Position: i + 1,
		}

		// Bare string citation first, object shape second.
		var urlOnly string
		if err := json.Unmarshal(raw, &urlOnly); err == nil {
			link.URL = urlOnly
		} else {
			var citation perplexityCitation
			if err := json.Unmarshal(raw, &citation); err != nil || citation.URL == "" {
				continue
			}
			link.URL = citation.URL
			link.Snippet = citation.Snippet
			if citation.Title != "" {
				link.Title = citation.Title
			}
		}

		result.SourceLinks = append(result.SourceLinks, link)
	}

	result.SourceLinks = capLinks(result.SourceLinks, perplexityLinkCap)
	return result
}

// scrapeWeb is the keyless fallback. Perplexity renders most content
// client-side, so this is best-effort only.
func (p *Perplexity) scrapeWeb(ctx context.Context, query string) *models.SearchResult {
	result := newResult(query, p.Name())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.webURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return errorResult(query, p.Name(), err.Error())
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Printf("[Perplexity] ⚠️ web fallback failed: %v\n", err)
		return errorResult(query, p.Name(), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(query, p.Name(), fmt.Sprintf("Perplexity returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return errorResult(query, p.Name(), fmt.Sprintf("failed to parse Perplexity page: %v", err))
	}

	text := doc.Find("body").Text()
	result.RawResponse = text
	result.Brands = append(result.Brands, brands.Extract(text)...)

	doc.Find(`a[href^="http"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(result.SourceLinks) >= perplexityLinkCap {
			return false
		}
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
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

	result.SourceLinks = capLinks(result.SourceLinks, perplexityLinkCap)
	return result
}
