package source

import (
	"strconv"
	"time"
)

// Candidate processing types

type Candidate struct {
	SourceID    string
	ItemID      int64 // source-local numeric id, valid only when HasID is set
	HasID       bool
	Link        string
	Title       string
	Body        string // raw extracted markup, normalized downstream
	MediaURL    string
	Category    string
	PublishedAt time.Time
}

// Key returns the identity-store key for the candidate: the numeric
// source-local id when present, the canonical link otherwise.
func (c Candidate) Key() string {
	if c.HasID {
		return strconv.FormatInt(c.ItemID, 10)
	}
	return c.Link
}

// Configuration types

type Kind string

const (
	KindPage Kind = "page"
	KindFeed Kind = "feed"
)

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Kind     Kind           `yaml:"kind"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	MaxItems       int  `yaml:"max_items"`
	DisablePreview bool `yaml:"disable_preview"`
}
