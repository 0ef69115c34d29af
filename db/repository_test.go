package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if err := RunMigrationsFromPath(dbPath, "file://migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	database, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database)
}

func TestRepositoryInsertAndRecent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []GenerationRecord{
		{ID: "a", Prompt: "a beach", EnrichedPrompt: "a vivid beach", Steps: 50, Guidance: 7.5, Status: StatusOK, Enriched: true, CreatedAt: base},
		{ID: "b", Prompt: "a forest", Steps: 30, Guidance: 9.0, Status: StatusError, CreatedAt: base.Add(time.Minute)},
		{ID: "c", Prompt: "a cave", Steps: 50, Guidance: 7.5, Status: StatusOK, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s): %v", rec.ID, err)
		}
	}

	got, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent(): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("Recent() order = %s, %s; want c, b", got[0].ID, got[1].ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestRepositoryRoundTripFields(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	in := GenerationRecord{
		ID:             "round-trip",
		Prompt:         "a desert at dusk",
		EnrichedPrompt: "a vast desert under an orange sky",
		Steps:          42,
		Guidance:       8.25,
		Status:         StatusOK,
		Enriched:       true,
	}
	if err := repo.Insert(ctx, in); err != nil {
		t.Fatalf("Insert(): %v", err)
	}

	got, err := repo.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent(): %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Recent() returned %d records, want 1", len(got))
	}
	out := got[0]
	if out.Prompt != in.Prompt || out.EnrichedPrompt != in.EnrichedPrompt ||
		out.Steps != in.Steps || out.Guidance != in.Guidance ||
		out.Status != in.Status || !out.Enriched {
		t.Errorf("round trip mismatch: got %+v", out)
	}
	if out.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted on insert")
	}
}

func TestRepositoryInsertRequiresID(t *testing.T) {
	repo := openTestRepo(t)
	if err := repo.Insert(context.Background(), GenerationRecord{Prompt: "x"}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestRepositoryRecentEmpty(t *testing.T) {
	repo := openTestRepo(t)
	got, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent(): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty table returned %d records", len(got))
	}
}
