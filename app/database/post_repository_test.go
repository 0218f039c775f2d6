package database

import (
	"fmt"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *PostRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewPostRepository(db)
}

func TestSeenAndMark(t *testing.T) {
	repo := newTestRepository(t)

	seen, err := repo.Seen("technews", "42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen {
		t.Error("Expected fresh key to be unseen")
	}

	if err := repo.Mark("technews", "42", "fp-42"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	seen, err = repo.Seen("technews", "42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !seen {
		t.Error("Expected marked key to be seen")
	}

	// Same key under a different source is a different identity
	seen, err = repo.Seen("otherchannel", "42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen {
		t.Error("Expected key to be scoped per source")
	}
}

func TestMarkIdempotent(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Mark("technews", "42", "fp-42"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := repo.Mark("technews", "42", "fp-42"); err != nil {
		t.Errorf("Marking a key twice must be a no-op, got: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record after duplicate mark, got %d", count)
	}
}

func TestSeenFingerprint(t *testing.T) {
	repo := newTestRepository(t)

	seen, err := repo.SeenFingerprint("fp-link-rotation")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen {
		t.Error("Expected fresh fingerprint to be unseen")
	}

	if err := repo.Mark("technews", "https://example.com/a", "fp-link-rotation"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Same story under a different link: fingerprint still matches
	seen, err = repo.SeenFingerprint("fp-link-rotation")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !seen {
		t.Error("Expected fingerprint to be seen regardless of link")
	}

	// Empty fingerprints never match
	seen, err = repo.SeenFingerprint("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen {
		t.Error("Empty fingerprint must never be seen")
	}
}

func TestEvictKeepsNewest(t *testing.T) {
	repo := newTestRepository(t)

	for i := 0; i < 20; i++ {
		if err := repo.Mark("technews", fmt.Sprintf("%d", i), fmt.Sprintf("fp-%d", i)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	deleted, err := repo.Evict(5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deleted != 15 {
		t.Errorf("Expected 15 evicted records, got %d", deleted)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 records after eviction, got %d", count)
	}

	// Oldest-inserted records are gone, newest remain
	seen, _ := repo.Seen("technews", "0")
	if seen {
		t.Error("Expected oldest record to be evicted")
	}
	seen, _ = repo.Seen("technews", "19")
	if !seen {
		t.Error("Expected newest record to survive eviction")
	}
}

func TestEvictBelowCeiling(t *testing.T) {
	repo := newTestRepository(t)

	for i := 0; i < 3; i++ {
		if err := repo.Mark("technews", fmt.Sprintf("%d", i), ""); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	deleted, err := repo.Evict(10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected no eviction below ceiling, got %d", deleted)
	}

	// A non-positive ceiling disables eviction entirely
	deleted, err = repo.Evict(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected no eviction with zero ceiling, got %d", deleted)
	}
}
