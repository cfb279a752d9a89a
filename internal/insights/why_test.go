package insights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

func TestBrandProfileDefaults(t *testing.T) {
	b := BrandProfile{}.withDefaults()

	if b.Name != "Pürblack" {
		t.Errorf("Name = %q", b.Name)
	}
	if len(b.Domains) != 1 || b.Domains[0] != "purblack.com" {
		t.Errorf("Domains = %v", b.Domains)
	}
	if len(b.Aliases) != 3 {
		t.Errorf("Aliases = %v", b.Aliases)
	}

	custom := BrandProfile{Name: "Sunfood", Domains: []string{"sunfood.com"}, Aliases: []string{"Sunfood"}}.withDefaults()
	if custom.Name != "Sunfood" || custom.Domains[0] != "sunfood.com" {
		t.Errorf("Explicit profile should survive defaults: %+v", custom)
	}
}

func TestParseWhyAnalysis(t *testing.T) {
	content := `{
		"summary": "Review sites dominate",
		"engines": [{
			"searchEngine": "Google AI Overview",
			"purblack": {"appears": true, "appearances": [{"position": 3, "url": "https://purblack.com", "title": "Pürblack"}]},
			"competitors": [{"name": "Sunfood", "whyTheyDidWell": ["listicle placement"]}]
		}],
		"nextDataToCollect": ["Reddit thread coverage"]
	}`

	analysis, err := parseWhyAnalysis(content)
	if err != nil {
		t.Fatalf("parseWhyAnalysis: %v", err)
	}
	if analysis.Summary != "Review sites dominate" {
		t.Errorf("Summary = %q", analysis.Summary)
	}
	if len(analysis.Engines) != 1 || !analysis.Engines[0].Brand.Appears {
		t.Errorf("Engines = %+v", analysis.Engines)
	}
	if analysis.Engines[0].Brand.Appearances[0].Position != 3 {
		t.Errorf("Appearance = %+v", analysis.Engines[0].Brand.Appearances)
	}
	if len(analysis.NextDataToCollect) != 1 {
		t.Errorf("NextDataToCollect = %v", analysis.NextDataToCollect)
	}
}

func TestParseWhyAnalysisToleratesProse(t *testing.T) {
	content := "Here you go:\n" + `{"summary": "s", "engines": [], "nextDataToCollect": []}` + "\nDone."

	analysis, err := parseWhyAnalysis(content)
	if err != nil {
		t.Fatalf("parseWhyAnalysis: %v", err)
	}
	if analysis.Summary != "s" {
		t.Errorf("Summary = %q", analysis.Summary)
	}
}

func TestParseWhyAnalysisNoJSON(t *testing.T) {
	if _, err := parseWhyAnalysis("no structured output here"); err == nil {
		t.Error("Expected an error for a response with no JSON object")
	}
}

func TestWhyAnalyzerRepairsMalformedReply(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		content := `{\"summary\": \"fixed\", \"engines\": [], \"nextDataToCollect\": []}`
		if calls == 1 {
			// Malformed: truncated JSON that the parser cannot recover.
			content = `{\"summary\": \"broken`
		}
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "` + content + `"},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer srv.Close()

	a := NewWhyAnalyzer("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	analysis, err := a.AnalyzeSearchResults(context.Background(), "best shilajit", BrandProfile{}, []models.SearchResult{{
		Query:        "best shilajit",
		SearchEngine: "Perplexity",
		Timestamp:    time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("AnalyzeSearchResults: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected a repair round-trip, got %d calls", calls)
	}
	if analysis.Summary != "fixed" {
		t.Errorf("Summary = %q", analysis.Summary)
	}
}

func TestBuildWhyPromptEmbedsBrandAndResults(t *testing.T) {
	prompt := buildWhyPrompt("best shilajit", BrandProfile{}.withDefaults(), []models.SearchResult{{
		Query:        "best shilajit",
		SearchEngine: "Bing Chat",
		Timestamp:    time.Now().UTC(),
	}})

	if !strings.Contains(prompt, "Pürblack") {
		t.Error("Prompt should name the brand")
	}
	if !strings.Contains(prompt, "purblack.com") {
		t.Error("Prompt should list brand domains")
	}
	if !strings.Contains(prompt, "Bing Chat") {
		t.Error("Prompt should embed the compacted results")
	}
	if !strings.Contains(prompt, "nextDataToCollect") {
		t.Error("Prompt should request the analysis JSON shape")
	}
}
