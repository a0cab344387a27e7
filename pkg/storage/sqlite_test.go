package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tagsignal/pkg/config"
	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	log, err := logger.New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecords() []feed.Record {
	return []feed.Record{
		{
			ID:         "1",
			Author:     "alice",
			ObservedAt: "2024-05-01T10:00:00Z",
			Text:       "market rally continues",
			Engagement: feed.Engagement{Likes: 10, Reshares: 2, Replies: 1},
			Mentions:   []string{"bob"},
			Tags:       []string{"nifty50"},
			SourceTag:  "#nifty50",
		},
		{
			Author:     "carol",
			ObservedAt: "2024-05-01T11:00:00Z",
			Text:       "banks dragging the index",
			SourceTag:  "#banknifty",
		},
	}
}

func TestSaveRecordsIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inserted, err := store.SaveRecords(ctx, sampleRecords())
	if err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted %d rows, want 2", inserted)
	}

	// Re-saving the same records inserts nothing
	inserted, err = store.SaveRecords(ctx, sampleRecords())
	if err != nil {
		t.Fatalf("second SaveRecords failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("re-insert added %d rows, want 0", inserted)
	}

	count, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestTexts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveRecords(ctx, sampleRecords()); err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}

	texts, err := store.Texts(ctx)
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("got %d texts, want 2", len(texts))
	}
}

func TestRecordsByTag(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveRecords(ctx, sampleRecords()); err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}

	records, err := store.RecordsByTag(ctx, "#nifty50")
	if err != nil {
		t.Fatalf("RecordsByTag failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Author != "alice" || r.ID != "1" {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Engagement.Likes != 10 {
		t.Errorf("Likes = %d, want 10", r.Engagement.Likes)
	}
	if len(r.Mentions) != 1 || r.Mentions[0] != "bob" {
		t.Errorf("Mentions = %v", r.Mentions)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "nifty50" {
		t.Errorf("Tags = %v", r.Tags)
	}
}

func TestSaveRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.SaveRun(ctx, &RunSummary{
		Started:  time.Now().Add(-time.Minute),
		Finished: time.Now(),
		Records:  42,
		Target:   2000,
		Tags:     []string{"#nifty50", "#sensex"},
	})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
}
