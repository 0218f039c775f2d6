package imagefind

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Finder resolves an illustration image for an item. The item's own
// media wins; otherwise the linked page is fetched and scanned for
// social-preview metadata.
type Finder struct {
	httpClient *http.Client
	userAgent  string
}

func NewFinder(httpClient *http.Client, userAgent string) *Finder {
	return &Finder{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Find returns the image URL to attach, or "" when the item publishes
// as plain text. mediaURL is the image the source itself carried.
func (f *Finder) Find(ctx context.Context, mediaURL, link string) string {
	if valid(mediaURL) {
		return mediaURL
	}

	if link == "" {
		return ""
	}

	found, err := f.fromPage(ctx, link)
	if err != nil {
		slog.Debug("Image lookup on linked page failed", "link", link, "error", err)
		return ""
	}

	return found
}

// fromPage scans the page for og:image, then twitter:image, then the
// first <img src>. Relative candidates resolve against the page URL.
func (f *Finder) fromPage(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	base, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse page URL: %w", err)
	}

	for _, candidate := range collectCandidates(doc) {
		if resolved := resolve(base, candidate); resolved != "" {
			return resolved, nil
		}
	}

	return "", nil
}

func collectCandidates(doc *goquery.Document) []string {
	var candidates []string

	selectors := []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	}
	for _, selector := range selectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if value, ok := s.Attr("content"); ok && strings.TrimSpace(value) != "" {
				candidates = append(candidates, strings.TrimSpace(value))
				return false
			}
			return true
		})
	}

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if value, ok := s.Attr("src"); ok && strings.TrimSpace(value) != "" {
			candidates = append(candidates, strings.TrimSpace(value))
			return false
		}
		return true
	})

	return candidates
}

// resolve makes the candidate absolute and keeps only http(s) URLs.
func resolve(base *url.URL, candidate string) string {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}

	absolute := base.ResolveReference(parsed).String()
	if !valid(absolute) {
		return ""
	}

	return absolute
}

func valid(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
