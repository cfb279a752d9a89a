// internal/brands/rankings.go
package brands

import (
	"sort"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

type brandStats struct {
	mentions    int
	positionSum int
	engines     map[string]bool
	lastSeen    time.Time
}

// CalculateRankings computes brand rankings over a batch of search results.
// It is a pure function: no I/O, inputs are not mutated, and a fixed input
// always produces the same output.
//
// Per brand: TotalMentions counts every mention record (duplicates within one
// result each count), AveragePosition is the mean of the lexicon-rank
// positions across all mentions, SearchEngines is the set of engines whose
// results mentioned the brand, LastSeen is the most recent mention timestamp.
//
// Output order: TotalMentions descending, then AveragePosition ascending.
// Brands that tie on both keys keep first-mention order, matching the stable
// sort over map insertion order in the original dashboard.
func CalculateRankings(results []models.SearchResult) []models.BrandRanking {
	stats := make(map[string]*brandStats)
	var order []string // first-seen brand order, for deterministic ties

	for _, result := range results {
		for _, mention := range result.Brands {
			s, ok := stats[mention.Brand]
			if !ok {
				s = &brandStats{
					engines:  make(map[string]bool),
					lastSeen: mention.Timestamp,
				}
				stats[mention.Brand] = s
				order = append(order, mention.Brand)
			}

			s.mentions++
			s.positionSum += mention.Position
			s.engines[result.SearchEngine] = true
			if mention.Timestamp.After(s.lastSeen) {
				s.lastSeen = mention.Timestamp
			}
		}
	}

	rankings := make([]models.BrandRanking, 0, len(order))
	for _, brand := range order {
		s := stats[brand]

		engines := make([]string, 0, len(s.engines))
		for engine := range s.engines {
			engines = append(engines, engine)
		}
		sort.Strings(engines)

		avg := 0.0
		if s.mentions > 0 {
			avg = float64(s.positionSum) / float64(s.mentions)
		}

		rankings = append(rankings, models.BrandRanking{
			Brand:           brand,
			TotalMentions:   s.mentions,
			AveragePosition: avg,
			SearchEngines:   engines,
			LastSeen:        s.lastSeen,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].TotalMentions != rankings[j].TotalMentions {
			return rankings[i].TotalMentions > rankings[j].TotalMentions
		}
		return rankings[i].AveragePosition < rankings[j].AveragePosition
	})

	return rankings
}
