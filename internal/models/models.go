// internal/models/models.go
package models

import "time"

// BrandMention is a single occurrence of a known brand inside free text.
// Position is the brand's 1-based rank in the tracking lexicon, not a search
// ranking. Context carries up to 50 characters either side of the match.
type BrandMention struct {
	Brand     string    `json:"brand"`
	Position  int       `json:"position"`
	Context   string    `json:"context"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	SourceURL string    `json:"sourceUrl,omitempty"`
}

// SourceLink is one citation or organic result surfaced by a search engine.
// Position is the 1-based rank within the result's own link list.
type SourceLink struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet,omitempty"`
	Position int    `json:"position"`
}

// SearchResult is the normalized unit every engine adapter produces,
// regardless of whether the backend returned API JSON, scraped HTML, or a
// chat completion. Adapters never fail past their boundary: on error the
// result still comes back with empty Brands/SourceLinks and RawResponse set
// to a human-readable "Error: ..." string.
type SearchResult struct {
	Query        string         `json:"query"`
	SearchEngine string         `json:"searchEngine"`
	Timestamp    time.Time      `json:"timestamp"`
	Brands       []BrandMention `json:"brands"`
	RawResponse  string         `json:"rawResponse,omitempty"`
	SourceLinks  []SourceLink   `json:"sourceLinks,omitempty"`
}

// BrandRanking is a pure projection over a batch of SearchResults. It is
// recomputed wholesale on every read and never persisted as mutable state.
type BrandRanking struct {
	Brand           string    `json:"brand"`
	TotalMentions   int       `json:"totalMentions"`
	AveragePosition float64   `json:"averagePosition"`
	SearchEngines   []string  `json:"searchEngines"`
	LastSeen        time.Time `json:"lastSeen"`
}

// Insight is one AI-generated narrative insight about search visibility.
type Insight struct {
	Text     string `json:"text"`
	Type     string `json:"type"`     // opportunity, warning, success, recommendation
	Priority string `json:"priority"` // high, medium, low
}
