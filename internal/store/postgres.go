// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const searchResultsSchema = `
CREATE TABLE IF NOT EXISTS search_results (
	id UUID PRIMARY KEY,
	query TEXT NOT NULL,
	search_engine TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL
)`

// PostgresStore persists history rows in Postgres. The full normalized result
// lives in the payload column; query/search_engine/created_at are lifted out
// for filtering and ordering.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, searchResultsSchema); err != nil {
		return nil, fmt.Errorf("failed to create search_results table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Load(ctx context.Context) ([]models.SearchResult, error) {
	var payloads [][]byte
	err := p.db.SelectContext(ctx, &payloads,
		`SELECT payload FROM search_results ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load search results: %w", err)
	}

	results := make([]models.SearchResult, 0, len(payloads))
	for _, payload := range payloads {
		var result models.SearchResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to parse stored result: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Save replaces the stored history wholesale, mirroring the file backend's
// rewrite semantics so the FIFO trim in Append applies to both.
func (p *PostgresStore) Save(ctx context.Context, results []models.SearchResult) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_results`); err != nil {
		return fmt.Errorf("failed to clear search results: %w", err)
	}

	for _, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO search_results (id, query, search_engine, created_at, payload)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), result.Query, result.SearchEngine, result.Timestamp, payload)
		if err != nil {
			return fmt.Errorf("failed to insert search result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search results: %w", err)
	}
	return nil
}
