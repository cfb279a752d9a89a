// internal/insights/anthropic.go
package insights

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

type anthropicGenerator struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicGenerator builds the Claude-backed generator. It relies on JSON
// prompting rather than a schema parameter, so the reply goes through the
// same tolerant parser as the OpenAI path.
func NewAnthropicGenerator(apiKey string, opts ...option.RequestOption) Generator {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &anthropicGenerator{
		client: &client,
		model:  anthropic.ModelClaudeSonnet4_20250514,
	}
}

func (g *anthropicGenerator) GenerateSearchInsights(ctx context.Context, query string, results []models.SearchResult) ([]models.Insight, error) {
	structuredPrompt := fmt.Sprintf(`%s

Remember: Return ONLY the JSON object, no other text.`, buildInsightPrompt(query, results))

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: structuredPrompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   2000,
		Messages:    messages,
		Temperature: anthropic.Float(0.3),
	})
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	var fullResponse string
	for _, block := range response.Content {
		if block.Type == "text" {
			fullResponse += block.Text
		}
	}

	return parseInsights(fullResponse)
}
