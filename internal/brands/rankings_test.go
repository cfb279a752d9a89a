package brands

import (
	"reflect"
	"testing"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

func mention(brand string, position int, ts time.Time) models.BrandMention {
	return models.BrandMention{
		Brand:     brand,
		Position:  position,
		Context:   brand + " context",
		Source:    "extracted",
		Timestamp: ts,
	}
}

func TestCalculateRankingsFrequencyDominatesPosition(t *testing.T) {
	now := time.Now().UTC()
	results := []models.SearchResult{
		{SearchEngine: "Perplexity", Brands: []models.BrandMention{mention("A", 1, now)}},
		{SearchEngine: "Bing Chat", Brands: []models.BrandMention{
			mention("B", 2, now),
			mention("B", 2, now),
		}},
	}

	rankings := CalculateRankings(results)
	if len(rankings) != 2 {
		t.Fatalf("Expected 2 rankings, got %d", len(rankings))
	}
	// B has 2 mentions vs A's 1; frequency wins even though A has the better
	// lexicon position.
	if rankings[0].Brand != "B" || rankings[1].Brand != "A" {
		t.Errorf("Order = [%s, %s], want [B, A]", rankings[0].Brand, rankings[1].Brand)
	}
}

func TestCalculateRankingsTieBreakOnAveragePosition(t *testing.T) {
	now := time.Now().UTC()
	results := []models.SearchResult{
		{SearchEngine: "Perplexity", Brands: []models.BrandMention{
			mention("Low", 9, now),
			mention("High", 2, now),
		}},
	}

	rankings := CalculateRankings(results)
	if rankings[0].Brand != "High" {
		t.Errorf("Tie on mentions should rank lower averagePosition first, got %s", rankings[0].Brand)
	}
}

func TestCalculateRankingsAggregation(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	results := []models.SearchResult{
		{SearchEngine: "Perplexity", Brands: []models.BrandMention{
			mention("Purblack", 1, early),
			mention("Purblack", 1, late),
		}},
		{SearchEngine: "Bing Chat", Brands: []models.BrandMention{
			mention("Purblack", 1, early),
		}},
	}

	rankings := CalculateRankings(results)
	if len(rankings) != 1 {
		t.Fatalf("Expected 1 ranking, got %d", len(rankings))
	}

	r := rankings[0]
	if r.TotalMentions != 3 {
		t.Errorf("TotalMentions = %d, want 3", r.TotalMentions)
	}
	if r.AveragePosition != 1.0 {
		t.Errorf("AveragePosition = %f, want 1.0", r.AveragePosition)
	}
	if !reflect.DeepEqual(r.SearchEngines, []string{"Bing Chat", "Perplexity"}) {
		t.Errorf("SearchEngines = %v, want sorted unique set", r.SearchEngines)
	}
	if !r.LastSeen.Equal(late) {
		t.Errorf("LastSeen = %v, want %v", r.LastSeen, late)
	}
}

func TestCalculateRankingsDeterministic(t *testing.T) {
	now := time.Now().UTC()
	results := []models.SearchResult{
		{SearchEngine: "Perplexity", Brands: []models.BrandMention{
			mention("A", 3, now), mention("B", 3, now), mention("C", 3, now),
		}},
		{SearchEngine: "Gemini", Brands: []models.BrandMention{
			mention("C", 3, now), mention("B", 3, now), mention("A", 3, now),
		}},
	}

	first := CalculateRankings(results)
	second := CalculateRankings(results)
	if !reflect.DeepEqual(first, second) {
		t.Error("CalculateRankings is not deterministic for identical input")
	}
}

func TestCalculateRankingsEmptyInput(t *testing.T) {
	rankings := CalculateRankings([]models.SearchResult{})
	if rankings == nil {
		t.Fatal("Expected empty slice, not nil")
	}
	if len(rankings) != 0 {
		t.Errorf("Expected 0 rankings, got %d", len(rankings))
	}
}

func TestCalculateRankingsDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	results := []models.SearchResult{
		{SearchEngine: "Perplexity", Brands: []models.BrandMention{mention("A", 1, now)}},
	}
	snapshot := make([]models.SearchResult, len(results))
	copy(snapshot, results)

	CalculateRankings(results)

	if !reflect.DeepEqual(results, snapshot) {
		t.Error("CalculateRankings mutated its input")
	}
}
