// internal/brands/extractor.go
package brands

import (
	"regexp"
	"strings"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// contextWindow is how many characters of surrounding text we keep on each
// side of a match.
const contextWindow = 50

// Extractor finds lexicon brand mentions in free text. The patterns are
// compiled once at construction; an Extractor is read-only afterwards and safe
// for concurrent use.
type Extractor struct {
	lexicon  []string
	patterns []*regexp.Regexp
}

// NewExtractor compiles a word-boundary, case-insensitive pattern for each
// lexicon entry. Regex metacharacters in brand names are escaped so entries
// are always matched literally.
func NewExtractor(lexicon []string) *Extractor {
	e := &Extractor{
		lexicon:  append([]string(nil), lexicon...),
		patterns: make([]*regexp.Regexp, len(lexicon)),
	}
	for i, brand := range lexicon {
		e.patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(brand) + `\b`)
	}
	return e
}

// Extract returns one BrandMention per non-overlapping occurrence of each
// lexicon brand in text. A brand appearing three times yields three mentions.
// Mentions of different brands that overlap in the text are all kept; the
// lexicon entries match independently. Empty text yields an empty slice.
func (e *Extractor) Extract(text string) []models.BrandMention {
	mentions := []models.BrandMention{}
	if text == "" {
		return mentions
	}

	now := time.Now().UTC()
	for i, pattern := range e.patterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			start := loc[0] - contextWindow
			if start < 0 {
				start = 0
			}
			end := loc[1] + contextWindow
			if end > len(text) {
				end = len(text)
			}

			mentions = append(mentions, models.BrandMention{
				Brand:     e.lexicon[i],
				Position:  i + 1, // rank in the lexicon, not in the text
				Context:   strings.TrimSpace(text[start:end]),
				Source:    "extracted",
				Timestamp: now,
			})
		}
	}

	return mentions
}

var defaultExtractor = NewExtractor(Known)

// Extract runs the default lexicon extractor over text. Usable standalone by
// callers wanting ad-hoc brand detection outside the search-engine flow.
func Extract(text string) []models.BrandMention {
	return defaultExtractor.Extract(text)
}
