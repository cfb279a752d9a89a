package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markjcsimmons/purblackanalytics/internal/models"
)

func sampleResult(query string) models.SearchResult {
	return models.SearchResult{
		Query:        query,
		SearchEngine: "Perplexity",
		Timestamp:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Brands:       []models.BrandMention{},
		SourceLinks:  []models.SourceLink{},
	}
}

func TestFileStoreMissingFileIsEmptyHistory(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	results, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if results == nil {
		t.Fatal("Expected empty slice, not nil")
	}
	if len(results) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(results))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	saved := []models.SearchResult{sampleResult("best shilajit"), sampleResult("shilajit benefits")}
	if err := fs.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].Query != "best shilajit" || loaded[1].Query != "shilajit benefits" {
		t.Errorf("Order not preserved: %q, %q", loaded[0].Query, loaded[1].Query)
	}
	if !loaded[0].Timestamp.Equal(saved[0].Timestamp) {
		t.Errorf("Timestamp = %v, want %v", loaded[0].Timestamp, saved[0].Timestamp)
	}
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewFileStore(dir); err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Data dir should exist: %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, resultsFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	if _, err := fs.Load(context.Background()); err == nil {
		t.Error("Expected an error for a corrupt results file")
	}
}

func TestAppendTrimsToLimit(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	var existing []models.SearchResult
	for i := 0; i < 8; i++ {
		existing = append(existing, sampleResult(fmt.Sprintf("query-%d", i)))
	}
	if err := fs.Save(ctx, existing); err != nil {
		t.Fatalf("Save: %v", err)
	}

	batch := []models.SearchResult{sampleResult("query-8"), sampleResult("query-9")}
	trimmed, err := Append(ctx, fs, batch, 5)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if len(trimmed) != 5 {
		t.Fatalf("Expected history trimmed to 5, got %d", len(trimmed))
	}
	// Oldest entries are evicted first; the newest batch survives.
	if trimmed[0].Query != "query-5" || trimmed[4].Query != "query-9" {
		t.Errorf("FIFO trim kept wrong window: first=%q last=%q", trimmed[0].Query, trimmed[4].Query)
	}

	persisted, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted) != 5 {
		t.Errorf("Trim must be persisted, found %d entries on disk", len(persisted))
	}
}

func TestAppendZeroLimitKeepsEverything(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	all, err := Append(context.Background(), fs, []models.SearchResult{sampleResult("a"), sampleResult("b")}, 0)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Limit 0 should disable trimming, got %d entries", len(all))
	}
}
