// internal/insights/why.go
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// BrandProfile identifies the tracked brand for the "why" analysis. Zero
// values fall back to the Pürblack defaults.
type BrandProfile struct {
	Name    string   `json:"brand"`
	Domains []string `json:"brandDomains"`
	Aliases []string `json:"brandAliases"`
}

func (b BrandProfile) withDefaults() BrandProfile {
	if b.Name == "" {
		b.Name = "Pürblack"
	}
	if len(b.Domains) == 0 {
		b.Domains = []string{"purblack.com"}
	}
	if len(b.Aliases) == 0 {
		b.Aliases = []string{"Pürblack", "Purblack", "Pur black"}
	}
	return b
}

// EvidenceRef points at one concrete result backing a claim.
type EvidenceRef struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

// EvidenceSignal is a named citation pattern with its supporting results.
type EvidenceSignal struct {
	Signal   string        `json:"signal"`
	Evidence []EvidenceRef `json:"evidence"`
}

// BrandPresence explains whether and why the tracked brand shows up in one
// engine's results.
type BrandPresence struct {
	Appears         bool             `json:"appears"`
	Appearances     []EvidenceRef    `json:"appearances"`
	WhyLikely       []string         `json:"whyLikely"`
	WhyNotLikely    []string         `json:"whyNotLikely"`
	EvidenceSignals []EvidenceSignal `json:"evidenceSignals"`
}

// CompetitorAnalysis covers one competing brand found in an engine's results.
type CompetitorAnalysis struct {
	Name            string           `json:"name"`
	Appearances     []EvidenceRef    `json:"appearances"`
	WhyTheyDidWell  []string         `json:"whyTheyDidWell"`
	EvidenceSignals []EvidenceSignal `json:"evidenceSignals"`
	GapsToVerify    []string         `json:"gapsToVerify"`
}

type ResultPattern struct {
	Pattern  string        `json:"pattern"`
	Evidence []EvidenceRef `json:"evidence"`
}

type Recommendation struct {
	Action   string        `json:"action"`
	Why      string        `json:"why"`
	Evidence []EvidenceRef `json:"evidence"`
}

// EngineWhy is the per-engine slice of a WhyAnalysis.
type EngineWhy struct {
	SearchEngine    string               `json:"searchEngine"`
	Brand           BrandPresence        `json:"purblack"`
	Competitors     []CompetitorAnalysis `json:"competitors"`
	ResultPatterns  []ResultPattern      `json:"resultPatterns"`
	Recommendations []Recommendation     `json:"recommendations"`
}

// WhyAnalysis answers "why are these the results" for one query across all
// engines, with every claim tied to evidence from the supplied results.
type WhyAnalysis struct {
	Summary           string      `json:"summary"`
	Engines           []EngineWhy `json:"engines"`
	NextDataToCollect []string    `json:"nextDataToCollect"`
}

// WhyAnalyzer produces a citation-mechanics analysis over a results batch.
type WhyAnalyzer interface {
	AnalyzeSearchResults(ctx context.Context, query string, brand BrandProfile, results []models.SearchResult) (*WhyAnalysis, error)
}

type openAIWhyAnalyzer struct {
	client *openai.Client
}

// NewWhyAnalyzer builds the OpenAI-backed analyzer. This analysis relies on
// JSON-object mode rather than a strict schema; the nested shape exceeds what
// structured outputs handle reliably, so malformed replies go through a
// repair round-trip instead.
func NewWhyAnalyzer(apiKey string, opts ...option.RequestOption) WhyAnalyzer {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &openAIWhyAnalyzer{client: &client}
}

func (a *openAIWhyAnalyzer) AnalyzeSearchResults(ctx context.Context, query string, brand BrandProfile, results []models.SearchResult) (*WhyAnalysis, error) {
	brand = brand.withDefaults()
	prompt := buildWhyPrompt(query, brand, results)

	content, err := a.complete(ctx, prompt, 0.1)
	if err != nil {
		return nil, fmt.Errorf("why analysis failed: %w", err)
	}

	analysis, parseErr := parseWhyAnalysis(content)
	if parseErr == nil {
		return analysis, nil
	}

	// Models occasionally emit malformed JSON (unescaped newlines mostly).
	// One repair round-trip asking the model to normalize its own output.
	repaired, err := a.complete(ctx, buildRepairPrompt(content), 0)
	if err != nil {
		return nil, fmt.Errorf("why analysis repair failed: %w", err)
	}
	analysis, err = parseWhyAnalysis(repaired)
	if err != nil {
		return nil, fmt.Errorf("why analysis unparseable after repair: %w", err)
	}
	return analysis, nil
}

func (a *openAIWhyAnalyzer) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Return valid JSON only."),
			openai.UserMessage(prompt),
		},
		Model:     openai.ChatModel("gpt-4o"),
		MaxTokens: openai.Int(900),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}

// parseWhyAnalysis decodes the analysis JSON, tolerating surrounding prose by
// slicing from the first '{' to the last '}' on a second attempt.
func parseWhyAnalysis(content string) (*WhyAnalysis, error) {
	var analysis WhyAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err == nil {
		return &analysis, nil
	}

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("no JSON object in analysis response")
	}
	if err := json.Unmarshal([]byte(content[first:last+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, nil
}

func buildWhyPrompt(query string, brand BrandProfile, results []models.SearchResult) string {
	payload, _ := json.MarshalIndent(compactResults(results), "", "  ")
	domains, _ := json.Marshal(brand.Domains)
	aliases, _ := json.Marshal(brand.Aliases)

	return fmt.Sprintf(`You are an expert in AI search visibility and citation mechanics.

Your job: answer "WHY are these the results?" for query %q, and specifically why %s appears or does NOT appear, with granular, competitor-specific reasons.

IMPORTANT RULES:
- Use ONLY the provided data (URLs/titles/snippets/brandsFound). Do NOT guess or browse the web.
- If you cannot prove a claim from the evidence here, you MUST label it as a hypothesis and state what evidence would confirm it.
- Avoid generic advice. Every insight/recommendation MUST reference evidence from the results (engine + position).
- Always spell the brand as %q exactly in your output text.

BRAND:
- Name: %s
- Domains: %s
- Aliases: %s

AI SEARCH RESULTS (top 10 per engine):
%s

WHAT TO EXTRACT (be specific):
- For each engine, list the dominant citation patterns (e.g., Reddit threads, listicles, review sites, affiliate blogs, ecommerce product pages, lab/COA pages, news/press mentions).
- Identify competitors that are appearing and explain why they did well based on signals in URL/title/snippet/hostname, such as:
  - Mentions of "COA", "lab report", "certificate of analysis", "third-party testing" in URL/title/snippet
  - Named media outlets in hostname/title (press coverage)
  - "best", "top", "review", "vs", "comparison", "coupon", "affiliate" patterns
  - Community/forum signals (Reddit, Quora, niche forums)
  - Authority aggregators (Healthline-style, Wirecutter-style)

OUTPUT REQUIREMENTS:
- Return ONLY valid JSON (no markdown).
- Evidence must reference the exact engine and result position(s) used.
- Prefer short bullet-like strings in arrays.
- Include up to 6 competitors per engine, prioritizing those appearing highest.

Return a JSON object with keys: summary (string), engines (array of {searchEngine, purblack: {appears, appearances, whyLikely, whyNotLikely, evidenceSignals}, competitors, resultPatterns, recommendations}), nextDataToCollect (array of strings).`,
		query, brand.Name, brand.Name, brand.Name, domains, aliases, payload)
}

func buildRepairPrompt(malformed string) string {
	return fmt.Sprintf(`Fix and normalize the following into valid JSON ONLY.

Rules:
- Output ONLY JSON (no markdown, no commentary).
- Keep the same data, just make it valid JSON.
- Ensure keys: summary (string), engines (array), nextDataToCollect (array).

Malformed JSON:
%s`, malformed)
}
