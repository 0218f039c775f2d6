package database

import (
	"time"
)

// PublishedPost is one identity record: written once on confirmed
// publish, never mutated, only evicted.
type PublishedPost struct {
	ID          int64
	Source      string
	PostKey     string // numeric source-local id, or the canonical link
	Fingerprint string // content hash of normalized title+body
	PostedAt    time.Time
}
