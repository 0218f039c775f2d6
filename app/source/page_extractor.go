package source

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var backgroundImageRe = regexp.MustCompile(`background-image:url\('([^']+)'\)`)

// PageExtractor pulls candidates out of a public channel web page.
type PageExtractor struct{}

func NewPageExtractor() *PageExtractor {
	return &PageExtractor{}
}

func (e *PageExtractor) Run(data []byte, src *Config) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var candidates []Candidate
	doc.Find("div.tgme_widget_message").Each(func(_ int, sel *goquery.Selection) {
		candidate, ok := e.extractMessage(sel, src.Name)
		if !ok {
			slog.Warn("Skipping malformed page entry", "source", src.Name)
			return
		}
		candidates = append(candidates, candidate)
	})

	// Ascending id order; the cap below therefore keeps the oldest
	// unseen messages first, matching the source's publish order.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ItemID < candidates[j].ItemID
	})

	if max := src.Settings.MaxItems; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	return candidates, nil
}

func (e *PageExtractor) extractMessage(sel *goquery.Selection, sourceID string) (Candidate, bool) {
	candidate := Candidate{
		SourceID:    sourceID,
		PublishedAt: time.Now().UTC(),
	}

	dataPost, _ := sel.Attr("data-post")
	if id, ok := ExtractNumericID(dataPost); ok {
		candidate.ItemID = id
		candidate.HasID = true
		candidate.Link = "https://t.me/" + dataPost
	} else if href, ok := sel.Find("a.tgme_widget_message_date").First().Attr("href"); ok {
		candidate.Link = href
	}

	if candidate.Link == "" {
		return Candidate{}, false
	}

	if textBlock := sel.Find("div.tgme_widget_message_text").First(); textBlock.Length() > 0 {
		if html, err := textBlock.Html(); err == nil {
			candidate.Body = html
		}
	}

	candidate.MediaURL = e.extractMedia(sel)

	if candidate.Body == "" && candidate.MediaURL == "" {
		return Candidate{}, false
	}

	return candidate, true
}

func (e *PageExtractor) extractMedia(sel *goquery.Selection) string {
	if photo := sel.Find("a.tgme_widget_message_photo_wrap").First(); photo.Length() > 0 {
		style, _ := photo.Attr("style")
		if match := backgroundImageRe.FindStringSubmatch(style); match != nil {
			return match[1]
		}
	}

	if view := sel.Find("a.tgme_widget_message_photo_view").First(); view.Length() > 0 {
		if href, ok := view.Attr("href"); ok {
			return href
		}
	}

	return ""
}

// ExtractNumericID parses the trailing numeric path segment of a
// structured identifier such as "channel/1234". A missing or
// non-numeric segment yields no id; the caller then falls back to
// link+fingerprint identity.
func ExtractNumericID(identifier string) (int64, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return 0, false
	}

	segments := strings.Split(identifier, "/")
	last := segments[len(segments)-1]

	id, err := strconv.ParseInt(last, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
