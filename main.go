// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/markjcsimmons/purblackanalytics/internal/api"
	"github.com/markjcsimmons/purblackanalytics/internal/config"
	"github.com/markjcsimmons/purblackanalytics/internal/insights"
	"github.com/markjcsimmons/purblackanalytics/internal/store"
)

// newHistoryStore prefers Postgres when DATABASE_URL is set and falls back to
// the JSON file store.
func newHistoryStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Printf("Using Postgres history store")
		return store.NewPostgresStore(ctx, db)
	}

	log.Printf("Using JSON file history store in %s/", cfg.DataDir)
	return store.NewFileStore(cfg.DataDir)
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Enabled engines: %v", cfg.EnabledEngines)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded, chatgpt engine and insights disabled")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}
	if cfg.GeminiAPIKey == "" {
		log.Printf("WARNING: Gemini API key not loaded")
	}

	ctx := context.Background()

	history, err := newHistoryStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize history store: %v", err)
	}

	generator, err := insights.New(cfg.OpenAIAPIKey, cfg.AnthropicAPIKey)
	if err != nil {
		log.Printf("Insight generation disabled: %v", err)
		generator = nil
	}

	var analyzer insights.WhyAnalyzer
	if cfg.OpenAIAPIKey != "" {
		analyzer = insights.NewWhyAnalyzer(cfg.OpenAIAPIKey)
	} else {
		log.Printf("Why analysis disabled: OpenAI API key not loaded")
	}

	server := api.NewServer(cfg, history, generator, analyzer)

	addr := ":" + cfg.Port
	log.Printf("Brand tracking server listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Routes()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
