// internal/store/store.go
package store

import (
	"context"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

// Store persists the rolling history of search results. Save always replaces
// the whole list; retention policy belongs to the caller, not the aggregation
// core.
type Store interface {
	Load(ctx context.Context) ([]models.SearchResult, error)
	Save(ctx context.Context, results []models.SearchResult) error
}

// Append loads the existing history, appends the new batch, FIFO-trims to the
// most recent limit entries and saves. It returns the trimmed history.
func Append(ctx context.Context, s Store, batch []models.SearchResult, limit int) ([]models.SearchResult, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	all := append(existing, batch...)
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	if err := s.Save(ctx, all); err != nil {
		return nil, err
	}
	return all, nil
}
