package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/ekazakov/news-relay/app/content"
)

// Placeholder is published instead of a report when every enrichment
// attempt failed; visible on purpose so the gap is noticed.
const Placeholder = "Подробный разбор темы временно недоступен."

// ReportCache holds previously generated reports keyed by topic hash.
type ReportCache interface {
	Report(key string) (string, bool)
	SetReport(key, value string)
}

// Enricher decides which items qualify for deep research and produces
// the report replacing their body text.
type Enricher struct {
	client     *Client
	cache      ReportCache
	httpClient *http.Client
	userAgent  string
	language   string
	minLength  int
	maxLength  int
	keywords   []string
}

func NewEnricher(client *Client, cache ReportCache, httpClient *http.Client,
	userAgent, language string, minLength, maxLength int, keywords []string) *Enricher {
	return &Enricher{
		client:     client,
		cache:      cache,
		httpClient: httpClient,
		userAgent:  userAgent,
		language:   language,
		minLength:  minLength,
		maxLength:  maxLength,
		keywords:   keywords,
	}
}

// Eligible applies the enrichment gate: the body must exceed the
// minimum length AND title+body must contain a trigger keyword.
// An unconfigured client gates everything out.
func (e *Enricher) Eligible(title, body string) bool {
	if !e.client.Configured() || len(e.keywords) == 0 {
		return false
	}

	if len([]rune(body)) < e.minLength {
		return false
	}

	haystack := strings.ToLower(title + " " + body)
	for _, keyword := range e.keywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

// Report generates (or serves from cache) the deep-research report for
// a qualifying item. Failure yields the visible placeholder, never an
// error: the item still publishes, in report mode.
func (e *Enricher) Report(ctx context.Context, title, body, link string) string {
	key := topicKey(title, body)
	if cached, ok := e.cache.Report(key); ok {
		return cached
	}

	topic := e.buildTopic(ctx, title, body, link)

	report, err := e.client.Summarize(ctx, topic, e.language, e.maxLength)
	if err != nil {
		slog.Warn("Enrichment failed, publishing placeholder", "link", link, "error", err)
		return Placeholder
	}

	report = content.Truncate(report, e.maxLength)
	e.cache.SetReport(key, report)

	return report
}

// buildTopic prefers the full linked article (fetched and reduced via
// readability) over the excerpt the feed carried; any fetch or
// extraction failure silently degrades to title+body.
func (e *Enricher) buildTopic(ctx context.Context, title, body, link string) string {
	topic := strings.TrimSpace(title + "\n\n" + body)

	if link == "" {
		return topic
	}

	article, err := e.fetchArticle(ctx, link)
	if err != nil {
		slog.Debug("Article fetch for enrichment failed, using excerpt", "link", link, "error", err)
		return topic
	}

	if extracted := content.PlainText(article, 4000); extracted != "" {
		topic = strings.TrimSpace(title + "\n\n" + extracted)
	}

	return topic
}

func (e *Enricher) fetchArticle(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from article")
	}

	return article.Content, nil
}

func topicKey(title, body string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, body)))
	return hex.EncodeToString(hash[:])
}
