package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekazakov/news-relay/app/database"
)

// Post is a fully transformed item ready for delivery.
type Post struct {
	Source         string
	Key            string
	Fingerprint    string
	HTML           string
	ImageURL       string
	IsReport       bool
	DisablePreview bool
}

// Tracker records a confirmed publish into durable state.
type Tracker interface {
	PublishSucceeded()
	Save() error
}

// Gate is the single exit of the pipeline: it delivers a post and, only
// on confirmed delivery, records its identity so the item is never sent
// again. Failed delivery leaves the identity unmarked for the next
// cycle to retry.
type Gate struct {
	sink            Sink
	repository      database.PostRepositoryInterface
	tracker         Tracker
	publisherChat   string
	adminChat       string
	publishDelay    time.Duration
	identityCeiling int
}

func NewGate(sink Sink, repository database.PostRepositoryInterface, tracker Tracker,
	publisherChat, adminChat string, publishDelay time.Duration, identityCeiling int) *Gate {
	return &Gate{
		sink:            sink,
		repository:      repository,
		tracker:         tracker,
		publisherChat:   publisherChat,
		adminChat:       adminChat,
		publishDelay:    publishDelay,
		identityCeiling: identityCeiling,
	}
}

// Publish sends the post. Image posts go as photo+caption; a photo
// failure gets one text-only retry. Reports always go text-only with
// the preview disabled.
func (g *Gate) Publish(ctx context.Context, post Post) error {
	err := g.deliver(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to deliver post %s/%s: %w", post.Source, post.Key, err)
	}

	if err := g.repository.Mark(post.Source, post.Key, post.Fingerprint); err != nil {
		// Delivered but unrecorded: the next cycle may repeat this
		// item, which beats silently dropping it.
		slog.Error("Failed to record published post", "source", post.Source, "key", post.Key, "error", err)
	} else if evicted, err := g.repository.Evict(g.identityCeiling); err != nil {
		slog.Warn("Identity eviction failed", "error", err)
	} else if evicted > 0 {
		slog.Debug("Evicted oldest identity records", "count", evicted)
	}

	g.tracker.PublishSucceeded()
	if err := g.tracker.Save(); err != nil {
		slog.Warn("Failed to save state snapshot after publish", "error", err)
	}

	slog.Info("Published post", "source", post.Source, "key", post.Key, "report", post.IsReport)

	g.pace(ctx)

	return nil
}

func (g *Gate) deliver(ctx context.Context, post Post) error {
	if post.ImageURL != "" && !post.IsReport {
		err := g.sink.SendPhoto(ctx, g.publisherChat, post.ImageURL, post.HTML)
		if err == nil {
			return nil
		}
		slog.Warn("Photo delivery failed, retrying as text", "source", post.Source, "key", post.Key, "error", err)
	}

	disablePreview := post.DisablePreview || post.IsReport
	return g.sink.SendText(ctx, g.publisherChat, post.HTML, disablePreview)
}

// pace sleeps between consecutive sends to stay under rate limits;
// cancellation cuts it short.
func (g *Gate) pace(ctx context.Context) {
	if g.publishDelay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(g.publishDelay):
	}
}

// Alert notifies the admin chat about an escalated failure. A missing
// admin chat makes it a no-op; alert failures are only logged.
func (g *Gate) Alert(ctx context.Context, text string) {
	if g.adminChat == "" {
		return
	}

	if err := g.sink.SendText(ctx, g.adminChat, text, true); err != nil {
		slog.Warn("Failed to deliver admin alert", "error", err)
	}
}
