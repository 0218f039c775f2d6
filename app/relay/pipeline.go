package relay

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/ekazakov/news-relay/app/content"
	"github.com/ekazakov/news-relay/app/publish"
	"github.com/ekazakov/news-relay/app/source"
)

const (
	maxTitleLength = 200
	maxBodyLength  = 3500
)

var hashtagCleanRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// processSource fetches one source document and runs every candidate
// through the pipeline. A panic here is contained so one bad source
// never blocks the rest of the cycle.
func (r *Relay) processSource(ctx context.Context, src *source.Config) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("source panic: %v", rec)
		}
	}()

	data, err := r.fetch(ctx, src.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	extractor := r.feedExtractor
	if src.Kind == source.KindPage {
		extractor = r.pageExtractor
	}

	candidates, err := extractor.Run(data, src)
	if err != nil {
		return fmt.Errorf("failed to extract candidates: %w", err)
	}

	// Global per-source ceiling on top of the source's own max_items.
	if r.fetchLimit > 0 && len(candidates) > r.fetchLimit {
		candidates = candidates[:r.fetchLimit]
	}

	slog.Debug("Source fetched", "source", src.Name, "candidates", len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.processCandidate(ctx, candidate, src); err != nil {
			slog.Warn("Item skipped", "source", src.Name, "key", candidate.Key(), "error", err)
		}
	}

	return nil
}

// processCandidate is the per-item pipeline: dedupe → normalize →
// translate → enrich → image → publish gate. A returned error means
// the item was skipped this cycle; it stays unmarked and becomes
// eligible again while the source still lists it.
func (r *Relay) processCandidate(ctx context.Context, candidate source.Candidate, src *source.Config) error {
	seen, err := r.repository.Seen(candidate.SourceID, candidate.Key())
	if err != nil {
		return fmt.Errorf("identity lookup failed: %w", err)
	}
	if seen {
		slog.Debug("Item already published", "source", candidate.SourceID, "key", candidate.Key())
		return nil
	}

	title := content.PlainText(candidate.Title, maxTitleLength)
	body := content.PlainText(candidate.Body, maxBodyLength)

	// Photo-only posts have no fingerprint; they dedup by id alone.
	fingerprint := content.Fingerprint(title, body)
	if fingerprint != "" {
		seen, err = r.repository.SeenFingerprint(fingerprint)
		if err != nil {
			return fmt.Errorf("fingerprint lookup failed: %w", err)
		}
		if seen {
			slog.Debug("Duplicate content under a new link", "source", candidate.SourceID, "key", candidate.Key())
			return nil
		}
	}

	title = r.translator.Translate(ctx, title)
	translatedBody := r.translator.Translate(ctx, body)

	// Translation yields plain text; source markup survives only when
	// the body needed no translation.
	bodyHTML := content.RenderRich(translatedBody)
	if translatedBody == body && candidate.Body != "" {
		bodyHTML = content.RenderRich(candidate.Body)
	}

	isReport := false
	if r.enricher.Eligible(title, translatedBody) {
		report := r.enricher.Report(ctx, title, translatedBody, candidate.Link)
		bodyHTML = content.RenderRich(report)
		isReport = true
	}

	imageURL := ""
	if !isReport {
		imageURL = r.finder.Find(ctx, candidate.MediaURL, candidate.Link)
	}

	category := r.translator.TranslateCategory(ctx, candidate.Category)

	post := publish.Post{
		Source:         candidate.SourceID,
		Key:            candidate.Key(),
		Fingerprint:    fingerprint,
		HTML:           composeMessage(title, bodyHTML, candidate.Link, category),
		ImageURL:       imageURL,
		IsReport:       isReport,
		DisablePreview: src.Settings.DisablePreview,
	}

	return r.publisher.Publish(ctx, post)
}

func (r *Relay) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// composeMessage assembles the sink HTML: bold title, body, then a
// footer with the category hashtag and the source link.
func composeMessage(title, bodyHTML, link, category string) string {
	var parts []string

	if title != "" {
		parts = append(parts, "<b>"+html.EscapeString(title)+"</b>")
	}
	if strings.TrimSpace(bodyHTML) != "" {
		parts = append(parts, strings.TrimSpace(bodyHTML))
	}

	var footer []string
	if tag := hashtag(category); tag != "" {
		footer = append(footer, tag)
	}
	if link != "" {
		footer = append(footer, fmt.Sprintf(`<a href="%s">Источник</a>`, html.EscapeString(link)))
	}
	if len(footer) > 0 {
		parts = append(parts, strings.Join(footer, " | "))
	}

	return strings.Join(parts, "\n\n")
}

// hashtag reduces a category to a single #Tag token.
func hashtag(category string) string {
	cleaned := hashtagCleanRe.ReplaceAllString(strings.TrimSpace(category), "")
	if cleaned == "" {
		return ""
	}
	return "#" + cleaned
}
