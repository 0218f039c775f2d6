package source

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedExtractor pulls candidates out of an RSS/Atom payload.
type FeedExtractor struct {
	parser *gofeed.Parser
}

func NewFeedExtractor() *FeedExtractor {
	return &FeedExtractor{
		parser: gofeed.NewParser(),
	}
}

func (e *FeedExtractor) Run(data []byte, src *Config) ([]Candidate, error) {
	feed, err := e.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	// Native feed order is preserved; the cap keeps the first N items
	// the feed lists.
	max := src.Settings.MaxItems

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		candidate, ok := e.extractItem(item, src.Name)
		if !ok {
			slog.Warn("Skipping malformed feed entry", "source", src.Name)
			continue
		}

		candidates = append(candidates, candidate)
		if max > 0 && len(candidates) >= max {
			break
		}
	}

	return candidates, nil
}

func (e *FeedExtractor) extractItem(item *gofeed.Item, sourceID string) (Candidate, bool) {
	link := cmp.Or(item.Link, item.GUID)
	if link == "" {
		return Candidate{}, false
	}

	candidate := Candidate{
		SourceID:    sourceID,
		Link:        link,
		Title:       item.Title,
		Body:        cmp.Or(item.Content, item.Description),
		PublishedAt: time.Now().UTC(),
	}

	if candidate.Title == "" && candidate.Body == "" {
		return Candidate{}, false
	}

	if id, ok := ExtractNumericID(item.GUID); ok {
		candidate.ItemID = id
		candidate.HasID = true
	}

	if item.Image != nil {
		candidate.MediaURL = item.Image.URL
	}
	if candidate.MediaURL == "" {
		candidate.MediaURL = e.extractEnclosureImage(item)
	}

	if len(item.Categories) > 0 {
		candidate.Category = item.Categories[0]
	}

	return candidate, true
}

// extractEnclosureImage returns the first enclosure carrying an image
// MIME type (RSS 2.0 allows a single enclosure per item, but feeds in
// the wild carry several).
func (e *FeedExtractor) extractEnclosureImage(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}
