// internal/insights/generator.go
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// ErrMissingAPIKey is returned at construction time when neither an OpenAI
// nor an Anthropic key is configured.
var ErrMissingAPIKey = errors.New("insights: an OpenAI or Anthropic API key is required")

// Generator turns a batch of search results into narrative visibility
// insights for the tracked brand.
type Generator interface {
	GenerateSearchInsights(ctx context.Context, query string, results []models.SearchResult) ([]models.Insight, error)
}

// New picks a backend from the available credentials: OpenAI structured
// output when an OpenAI key is present, the Anthropic JSON-prompting backend
// otherwise. Credential validation happens here, not at call time.
func New(openAIKey, anthropicKey string) (Generator, error) {
	if openAIKey != "" {
		return NewOpenAIGenerator(openAIKey), nil
	}
	if anthropicKey != "" {
		return NewAnthropicGenerator(anthropicKey), nil
	}
	return nil, ErrMissingAPIKey
}

// insightItem mirrors models.Insight with schema annotations for structured
// output.
type insightItem struct {
	Text     string `json:"text" jsonschema_description:"The insight text, specific and evidence-based"`
	Type     string `json:"type" jsonschema:"enum=opportunity,enum=warning,enum=success,enum=recommendation" jsonschema_description:"Insight category"`
	Priority string `json:"priority" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"How urgent the insight is"`
}

type insightResponse struct {
	Insights []insightItem `json:"insights" jsonschema_description:"AI search visibility insights"`
}

// Generate the JSON schema at initialization time
var insightResponseSchema = GenerateSchema[insightResponse]()

type openAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator builds the OpenAI-backed generator. Extra request
// options are passed through to the SDK client for tests.
func NewOpenAIGenerator(apiKey string, opts ...option.RequestOption) Generator {
	fmt.Printf("[NewOpenAIGenerator] Creating insight generator (key length: %d)\n", len(apiKey))
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &openAIGenerator{client: &client}
}

func (g *openAIGenerator) GenerateSearchInsights(ctx context.Context, query string, results []models.SearchResult) ([]models.Insight, error) {
	prompt := buildInsightPrompt(query, results)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "search_insights",
		Description: openai.String("AI search visibility insights for the tracked brand"),
		Schema:      insightResponseSchema,
		Strict:      openai.Bool(true),
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert in AI search visibility for ecommerce brands. Return valid JSON only."),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel("gpt-4o"),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("insight generation returned no choices")
	}

	return parseInsights(completion.Choices[0].Message.Content)
}

// parseInsights decodes a JSON insights payload, tolerating surrounding prose
// by slicing from the first '{' to the last '}'.
func parseInsights(content string) ([]models.Insight, error) {
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("no JSON object in insight response")
	}

	var parsed insightResponse
	if err := json.Unmarshal([]byte(content[first:last+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse insight response: %w", err)
	}

	insights := make([]models.Insight, 0, len(parsed.Insights))
	for _, item := range parsed.Insights {
		insights = append(insights, models.Insight{
			Text:     item.Text,
			Type:     item.Type,
			Priority: item.Priority,
		})
	}
	return insights, nil
}

// compactResult is the trimmed view of a SearchResult that goes into the
// prompt, keeping tokens down on long raw responses.
type compactResult struct {
	SearchEngine string              `json:"searchEngine"`
	Query        string              `json:"query"`
	Timestamp    string              `json:"timestamp"`
	BrandsFound  []string            `json:"brandsFound"`
	TopResults   []models.SourceLink `json:"topResults"`
}

func compactResults(results []models.SearchResult) []compactResult {
	compact := make([]compactResult, 0, len(results))
	for _, r := range results {
		c := compactResult{
			SearchEngine: r.SearchEngine,
			Query:        r.Query,
			Timestamp:    r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			BrandsFound:  []string{},
			TopResults:   []models.SourceLink{},
		}
		for _, mention := range r.Brands {
			if len(c.BrandsFound) >= 30 {
				break
			}
			c.BrandsFound = append(c.BrandsFound, mention.Brand)
		}
		for _, link := range r.SourceLinks {
			if len(c.TopResults) >= 10 {
				break
			}
			link.Title = truncate(link.Title, 140)
			link.Snippet = truncate(link.Snippet, 260)
			c.TopResults = append(c.TopResults, link)
		}
		compact = append(compact, c)
	}
	return compact
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func buildInsightPrompt(query string, results []models.SearchResult) string {
	payload, _ := json.MarshalIndent(compactResults(results), "", "  ")

	return fmt.Sprintf(`You are an expert in AI search visibility for Pürblack (Purblack), a premium shilajit brand. Analyze the AI search results for the query %q and deliver VERY SPECIFIC, competitive insights about how Pürblack appears versus competitors.

RESULTS:
%s

REQUIREMENTS:
- Compare Pürblack visibility to competitors found in the results.
- Explain WHY competitors appear (e.g., Reddit mentions, review sites, listicles, affiliate blogs) using evidence from results.
- Provide precise, action-oriented recommendations tied to those sources.
- Avoid generic advice. Every insight must reference a source pattern from the results.

Return ONLY a JSON object with an "insights" array. Each item must include:
- text (string)
- type (opportunity|warning|success|recommendation)
- priority (high|medium|low)`, query, payload)
}
