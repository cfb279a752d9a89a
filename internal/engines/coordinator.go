// internal/engines/coordinator.go
package engines

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// Options configures a fan-out: which engines to dispatch and the per-engine
// credentials. A missing credential never blocks dispatch (the adapter
// reports it in-band), with one exception carried over from the original
// dashboard: chatgpt is only dispatched when its key is present.
type Options struct {
	EnabledEngines   []string
	PerplexityAPIKey string
	OpenAIAPIKey     string
	GeminiAPIKey     string
}

// enabledEngines builds one adapter per enabled identifier. Unknown
// identifiers are ignored. Defaults mirror the original dashboard: perplexity,
// google and bing when nothing is specified.
func enabledEngines(opts Options) []Engine {
	enabled := opts.EnabledEngines
	if len(enabled) == 0 {
		enabled = []string{"perplexity", "google", "bing"}
	}

	var list []Engine
	for _, name := range enabled {
		switch strings.ToLower(name) {
		case "perplexity":
			list = append(list, NewPerplexity(opts.PerplexityAPIKey))
		case "google":
			list = append(list, NewGoogleAIOverview())
		case "bing":
			list = append(list, NewBingChat())
		case "chatgpt":
			if opts.OpenAIAPIKey != "" {
				list = append(list, NewChatGPT(opts.OpenAIAPIKey))
			}
		case "gemini":
			list = append(list, NewGemini(opts.GeminiAPIKey))
		default:
			fmt.Printf("[QueryAll] ⚠️ Unknown engine %q, skipping\n", name)
		}
	}
	return list
}

// QueryAll dispatches the query to every enabled engine concurrently and
// waits for all of them to settle. Engines race independently, so the output
// order is completion order, not Options order.
//
// Each engine already converts its own failures into a valid SearchResult, so
// the only way a slot can go missing is an adapter-contract violation (panic
// or nil result); those are logged and omitted rather than synthesized.
func QueryAll(ctx context.Context, query string, opts Options) []models.SearchResult {
	return QueryEngines(ctx, query, enabledEngines(opts))
}

// QueryEngines is the settled-join over an explicit engine list. Split out so
// tests can inject fakes.
func QueryEngines(ctx context.Context, query string, list []Engine) []models.SearchResult {
	resultCh := make(chan *models.SearchResult, len(list))

	var wg sync.WaitGroup
	for _, engine := range list {
		wg.Add(1)
		go func(engine Engine) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("[QueryAll] ⚠️ Engine %s violated its contract, dropping result: %v\n", engine.Name(), r)
				}
			}()
			resultCh <- engine.Query(ctx, query)
		}(engine)
	}

	wg.Wait()
	close(resultCh)

	results := make([]models.SearchResult, 0, len(list))
	for result := range resultCh {
		if result == nil {
			fmt.Printf("[QueryAll] ⚠️ Engine returned nil result, dropping\n")
			continue
		}
		results = append(results, *result)
	}
	return results
}
