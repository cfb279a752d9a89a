// internal/engines/chatgpt.go
package engines

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const chatGPTLinkCap = 10

// ChatGPT asks a plain chat-completion model the query and mines the reply
// for brand mentions and raw source URLs. There is no grounding here; links
// are whatever the model chose to cite inline.
type ChatGPT struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewChatGPT builds the adapter. Extra request options (custom base URL,
// middleware) are passed through to the SDK client; tests use this to point
// at a mock server. A missing key leaves the client nil and Query reports it
// without any network call.
func NewChatGPT(apiKey string, opts ...option.RequestOption) *ChatGPT {
	if apiKey == "" {
		return &ChatGPT{}
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &ChatGPT{
		client: &client,
		model:  openai.ChatModelGPT4,
	}
}

func (c *ChatGPT) Name() string {
	return "ChatGPT"
}

func (c *ChatGPT) Query(ctx context.Context, query string) *models.SearchResult {
	if c.client == nil {
		return errorResult(query, c.Name(), "OpenAI API key required")
	}

	result := newResult(query, c.Name())

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(query + ". Please provide sources/links if available."),
		},
		Model:     c.model,
		MaxTokens: openai.Int(1000),
	})
	if err != nil {
		fmt.Printf("[ChatGPT] ⚠️ completion failed: %v\n", err)
		return errorResult(query, c.Name(), err.Error())
	}

	if len(completion.Choices) > 0 {
		result.RawResponse = completion.Choices[0].Message.Content
	}
	result.Brands = append(result.Brands, brands.Extract(result.RawResponse)...)
	result.SourceLinks = linksFromText(result.RawResponse, chatGPTLinkCap)

	return result
}
