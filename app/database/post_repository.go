package database

import (
	"database/sql"
	"fmt"
)

var _ PostRepositoryInterface = (*PostRepository)(nil)

// PostRepository handles database operations for published posts
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// Seen reports whether an identity key has been marked published.
func (r *PostRepository) Seen(source, postKey string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM published_posts
		WHERE source = ? AND post_key = ?
		LIMIT 1
	`, source, postKey).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}

	return true, nil
}

// SeenFingerprint reports whether a content fingerprint has been
// marked published under any source or link.
func (r *PostRepository) SeenFingerprint(fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}

	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM published_posts
		WHERE fingerprint = ?
		LIMIT 1
	`, fingerprint).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}

	return true, nil
}

// Mark records a published post. Marking the same key twice is a
// no-op, not an error.
func (r *PostRepository) Mark(source, postKey, fingerprint string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO published_posts (source, post_key, fingerprint)
		VALUES (?, ?, ?)
	`, source, postKey, fingerprint)

	if err != nil {
		return fmt.Errorf("failed to mark post: %w", err)
	}

	return nil
}

// Evict removes oldest-inserted records until the store holds at most
// ceiling entries, returning how many were deleted. Insertion order is
// eviction order; re-confirmed items do not get refreshed.
func (r *PostRepository) Evict(ceiling int) (int, error) {
	if ceiling <= 0 {
		return 0, nil
	}

	result, err := r.db.Exec(`
		DELETE FROM published_posts
		WHERE id IN (
			SELECT id FROM published_posts
			ORDER BY id ASC
			LIMIT MAX((SELECT COUNT(*) FROM published_posts) - ?, 0)
		)
	`, ceiling)
	if err != nil {
		return 0, fmt.Errorf("failed to evict posts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted posts: %w", err)
	}

	return int(deleted), nil
}

// Count returns the number of identity records currently stored.
func (r *PostRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM published_posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}
