// internal/engines/gemini.go
package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const geminiLinkCap = 10

// Gemini issues a generation request with the search-grounding tool enabled
// and walks the grounding metadata for citations. It requires an API key; the
// adapter checks the explicit key first, then the GOOGLE_GEMINI_API_KEY /
// GEMINI_API_KEY env chain, and short-circuits without a network call when
// none is found.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewGemini(apiKey string) *Gemini {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return &Gemini{
		apiKey:     apiKey,
		baseURL:    "https://generativelanguage.googleapis.com",
		model:      "gemini-1.5-flash",
		httpClient: newHTTPClient(),
	}
}

func (g *Gemini) Name() string {
	return "Gemini"
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gemini) Query(ctx context.Context, query string) *models.SearchResult {
	if g.apiKey == "" {
		return errorResult(query, g.Name(), "Gemini API key required (set GOOGLE_GEMINI_API_KEY or GEMINI_API_KEY)")
	}

	result := newResult(query, g.Name())

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: query}}}},
		Tools:    []geminiTool{{}},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errorResult(query, g.Name(), err.Error())
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return errorResult(query, g.Name(), err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		fmt.Printf("[Gemini] ⚠️ request failed: %v\n", err)
		return errorResult(query, g.Name(), err.Error())
	}
	defer resp.Body.Close()

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return errorResult(query, g.Name(), fmt.Sprintf("failed to decode Gemini response: %v", err))
	}
	if apiResp.Error != nil && apiResp.Error.Message != "" {
		return errorResult(query, g.Name(), apiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return errorResult(query, g.Name(), fmt.Sprintf("Gemini API returned status %d", resp.StatusCode))
	}
	if len(apiResp.Candidates) == 0 {
		return errorResult(query, g.Name(), "Gemini returned no candidates")
	}

	candidate := apiResp.Candidates[0]

	var answer strings.Builder
	for _, part := range candidate.Content.Parts {
		answer.WriteString(part.Text)
	}
	result.RawResponse = answer.String()
	result.Brands = append(result.Brands, brands.Extract(result.RawResponse)...)

	// Structured citations: grounding metadata -> grounding chunks -> web,
	// deduplicated by URL.
	seen := make(map[string]bool)
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			title := chunk.Web.Title
			if title == "" {
				title = fmt.Sprintf("Source %d", len(result.SourceLinks)+1)
			}
			result.SourceLinks = append(result.SourceLinks, models.SourceLink{
				URL:      chunk.Web.URI,
				Title:    title,
				Position: len(result.SourceLinks) + 1,
			})
		}
	}

	// Fallback: mine raw URLs out of the answer text, skipping Google's own
	// hosts.
	if len(result.SourceLinks) == 0 {
		for _, raw := range urlPattern.FindAllString(result.RawResponse, -1) {
			if len(result.SourceLinks) >= geminiLinkCap {
				break
			}
			host := hostnameOf(raw)
			if host == "" || strings.Contains(host, "google") || seen[raw] {
				continue
			}
			seen[raw] = true
			result.SourceLinks = append(result.SourceLinks, models.SourceLink{
				URL:      raw,
				Title:    host,
				Position: len(result.SourceLinks) + 1,
			})
		}
	}

	result.SourceLinks = capLinks(result.SourceLinks, geminiLinkCap)
	return result
}
