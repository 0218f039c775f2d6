package relay

import (
	"context"

	"github.com/ekazakov/news-relay/app/publish"
	"github.com/ekazakov/news-relay/app/source"
)

// Extractor turns one fetched document into ordered candidates.
type Extractor interface {
	Run(data []byte, src *source.Config) ([]source.Candidate, error)
}

// Translator brings text into the target language, degrading to the
// input on failure.
type Translator interface {
	Translate(ctx context.Context, text string) string
	TranslateCategory(ctx context.Context, category string) string
}

// Enricher gates items into deep-research mode and produces reports.
type Enricher interface {
	Eligible(title, body string) bool
	Report(ctx context.Context, title, body, link string) string
}

// ImageFinder resolves an illustration for an item, "" when none.
type ImageFinder interface {
	Find(ctx context.Context, mediaURL, link string) string
}

// Publisher is the pipeline exit: delivery plus identity commit.
type Publisher interface {
	Publish(ctx context.Context, post publish.Post) error
	Alert(ctx context.Context, text string)
}
