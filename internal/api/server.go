// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/brands"
	"github.com/markjcsimmons/purblackanalytics/internal/config"
	"github.com/markjcsimmons/purblackanalytics/internal/engines"
	"github.com/markjcsimmons/purblackanalytics/internal/insights"
	"github.com/markjcsimmons/purblackanalytics/internal/models"
	"github.com/markjcsimmons/purblackanalytics/internal/store"
)

// Server exposes the brand-tracking endpoints. The insight generator is
// optional; the insights endpoint reports a configuration error when it is
// absent.
type Server struct {
	cfg       *config.Config
	history   store.Store
	generator insights.Generator
	analyzer  insights.WhyAnalyzer

	// queryAll is swappable in tests to avoid live engine calls.
	queryAll func(ctx context.Context, query string, opts engines.Options) []models.SearchResult
}

func NewServer(cfg *config.Config, history store.Store, generator insights.Generator, analyzer insights.WhyAnalyzer) *Server {
	return &Server{
		cfg:       cfg,
		history:   history,
		generator: generator,
		analyzer:  analyzer,
		queryAll:  engines.QueryAll,
	}
}

// Routes registers all handlers on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/brand-tracking", s.handleBrandTracking)
	mux.HandleFunc("/api/ai-search-rankings", s.handleSearchRankings)
	mux.HandleFunc("/api/ai-search-insights", s.handleSearchInsights)
	mux.HandleFunc("/api/ai-search-why", s.handleSearchWhy)
	return mux
}

type trackingRequest struct {
	Query            string   `json:"query"`
	PerplexityAPIKey string   `json:"perplexityApiKey"`
	OpenAIAPIKey     string   `json:"openaiApiKey"`
	GeminiAPIKey     string   `json:"geminiApiKey"`
	EnabledEngines   []string `json:"enabledEngines"`
}

func (s *Server) handleBrandTracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.runTracking(w, r)
	case http.MethodGet:
		s.readTracking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// runTracking fans the query out to the enabled engines, appends the batch to
// history (FIFO-trimmed) and returns the batch with its rankings.
func (s *Server) runTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	opts := s.engineOptions(req)
	results := s.queryAll(r.Context(), req.Query, opts)

	if _, err := store.Append(r.Context(), s.history, results, s.cfg.HistoryLimit); err != nil {
		// History is best-effort; the fresh batch is still worth returning.
		fmt.Printf("[BrandTracking] ⚠️ Failed to persist results: %v\n", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"results":   results,
		"rankings":  brands.CalculateRankings(results),
		"timestamp": time.Now().UTC(),
	})
}

// readTracking serves historical results, optionally filtered by query
// substring, with rankings recomputed over the filtered set.
func (s *Server) readTracking(w http.ResponseWriter, r *http.Request) {
	all, err := s.history.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filter := strings.ToLower(r.URL.Query().Get("query"))
	filtered := all
	if filter != "" {
		filtered = []models.SearchResult{}
		for _, result := range all {
			if strings.Contains(strings.ToLower(result.Query), filter) {
				filtered = append(filtered, result)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"results":      filtered,
		"rankings":     brands.CalculateRankings(filtered),
		"totalResults": len(filtered),
	})
}

type engineRanking struct {
	SearchEngine string              `json:"searchEngine"`
	TopResults   []models.SourceLink `json:"topResults"`
}

// handleSearchRankings returns the top links per engine for a query, the view
// behind the dashboard's rankings table.
func (s *Server) handleSearchRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		query = "best shilajit"
	}
	fmt.Printf("[API] AI Search Rankings endpoint called with query: %s\n", query)

	opts := s.engineOptions(trackingRequest{EnabledEngines: []string{"google", "chatgpt"}})
	results := s.queryAll(r.Context(), query, opts)

	rankings := make([]engineRanking, 0, len(results))
	for _, result := range results {
		links := result.SourceLinks
		if len(links) > 10 {
			links = links[:10]
		}
		rankings = append(rankings, engineRanking{
			SearchEngine: result.SearchEngine,
			TopResults:   links,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"query":     query,
		"results":   rankings,
		"timestamp": time.Now().UTC(),
	})
}

type insightsRequest struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

func (s *Server) handleSearchInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusInternalServerError, insights.ErrMissingAPIKey.Error())
		return
	}

	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" || len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "Missing query or results")
		return
	}

	generated, err := s.generator.GenerateSearchInsights(r.Context(), req.Query, req.Results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights": generated,
	})
}

type whyRequest struct {
	Query        string                `json:"query"`
	Results      []models.SearchResult `json:"results"`
	Brand        string                `json:"brand"`
	BrandDomains []string              `json:"brandDomains"`
	BrandAliases []string              `json:"brandAliases"`
}

// handleSearchWhy explains why the supplied results look the way they do,
// with every claim tied to result evidence.
func (s *Server) handleSearchWhy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.analyzer == nil {
		writeError(w, http.StatusInternalServerError, `OPENAI_API_KEY is required to run AI search "why" analysis.`)
		return
	}

	var req whyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" || len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "Missing query or results")
		return
	}

	brand := insights.BrandProfile{
		Name:    req.Brand,
		Domains: req.BrandDomains,
		Aliases: req.BrandAliases,
	}
	analysis, err := s.analyzer.AnalyzeSearchResults(r.Context(), req.Query, brand, req.Results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": analysis,
	})
}

// engineOptions layers request-supplied credentials over the configured ones.
func (s *Server) engineOptions(req trackingRequest) engines.Options {
	opts := engines.Options{
		EnabledEngines:   req.EnabledEngines,
		PerplexityAPIKey: s.cfg.PerplexityAPIKey,
		OpenAIAPIKey:     s.cfg.OpenAIAPIKey,
		GeminiAPIKey:     s.cfg.GeminiAPIKey,
	}
	if len(opts.EnabledEngines) == 0 {
		opts.EnabledEngines = s.cfg.EnabledEngines
	}
	if req.PerplexityAPIKey != "" {
		opts.PerplexityAPIKey = req.PerplexityAPIKey
	}
	if req.OpenAIAPIKey != "" {
		opts.OpenAIAPIKey = req.OpenAIAPIKey
	}
	if req.GeminiAPIKey != "" {
		opts.GeminiAPIKey = req.GeminiAPIKey
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
