// cmd/track/main.go
//
// One-shot fan-out runner: queries the enabled engines for a single query and
// prints the per-engine results and the computed brand rankings. Useful for
// checking credentials and selector drift without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/config"
	"github.com/markjcsimmons/purblackanalytics/internal/engines"
)

func main() {
	query := flag.String("q", "best shilajit", "query to fan out")
	engineList := flag.String("engines", "", "comma-separated engines (default from ENABLED_ENGINES)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Note: no .env file loaded: %v", err)
	}
	cfg := config.Load()

	opts := engines.Options{
		EnabledEngines:   cfg.EnabledEngines,
		PerplexityAPIKey: cfg.PerplexityAPIKey,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		GeminiAPIKey:     cfg.GeminiAPIKey,
	}
	if *engineList != "" {
		opts.EnabledEngines = strings.Split(*engineList, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("[track] 🚀 Querying %v for %q\n", opts.EnabledEngines, *query)
	results := engines.QueryAll(ctx, *query, opts)

	for _, result := range results {
		fmt.Printf("\n=== %s (%d mentions, %d links)\n", result.SearchEngine, len(result.Brands), len(result.SourceLinks))
		for _, link := range result.SourceLinks {
			fmt.Printf("  %2d. %s -> %s\n", link.Position, link.Title, link.URL)
		}
		if strings.HasPrefix(result.RawResponse, "Error:") {
			fmt.Printf("  %s\n", result.RawResponse)
		}
	}

	fmt.Printf("\n=== Rankings\n")
	for i, ranking := range brands.CalculateRankings(results) {
		fmt.Printf("  %2d. %-22s mentions=%d avgPos=%.1f engines=%v\n",
			i+1, ranking.Brand, ranking.TotalMentions, ranking.AveragePosition, ranking.SearchEngines)
	}
}
