// internal/store/filestore.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

const resultsFileName = "brand-tracking-results.json"

// FileStore keeps the whole history in one pretty-printed JSON file under the
// data directory. This is the default backend when no database is configured.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, resultsFileName)}, nil
}

func (f *FileStore) Load(ctx context.Context) ([]models.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.SearchResult{}, nil
		}
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var results []models.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return results, nil
}

func (f *FileStore) Save(ctx context.Context, results []models.SearchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
