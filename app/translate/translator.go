package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultCategory stands in when a candidate carries no category.
const DefaultCategory = "Новости"

// Cache holds previously translated text; purely an optimization, a
// miss always falls through to a live provider call.
type Cache interface {
	Translation(key string) (string, bool)
	SetTranslation(key, value string)
}

// Translator runs the fallback chain: cache, primary provider (with
// one retry), then secondary. Output that fails the target-script
// check counts as a provider failure. When every leg fails the
// original text is returned unchanged; translation is never fatal to
// publishing.
type Translator struct {
	primary    Provider
	secondary  Provider
	detector   *Detector
	cache      Cache
	retryDelay time.Duration
}

func NewTranslator(primary, secondary Provider, detector *Detector, cache Cache, retryDelay time.Duration) *Translator {
	return &Translator{
		primary:    primary,
		secondary:  secondary,
		detector:   detector,
		cache:      cache,
		retryDelay: retryDelay,
	}
}

func (t *Translator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	if t.detector.IsTarget(text) {
		return text
	}

	target := t.detector.Target()
	key := cacheKey(text, target)
	if cached, ok := t.cache.Translation(key); ok {
		return cached
	}

	attempts := []Provider{t.primary, t.primary, t.secondary}
	for i, provider := range attempts {
		if provider == nil {
			continue
		}

		if i > 0 && !sleepContext(ctx, t.retryDelay) {
			return text
		}

		translated, err := provider.Translate(ctx, text, target)
		if err != nil {
			slog.Warn("Translation attempt failed", "provider", provider.Name(), "attempt", i+1, "error", err)
			continue
		}

		if !t.detector.IsTarget(translated) {
			slog.Warn("Translation rejected, wrong script", "provider", provider.Name(), "attempt", i+1)
			continue
		}

		t.cache.SetTranslation(key, translated)
		return translated
	}

	slog.Warn("All translation attempts failed, passing text through", "target", target)
	return text
}

// TranslateCategory translates the category field, substituting the
// fixed placeholder when absent.
func (t *Translator) TranslateCategory(ctx context.Context, category string) string {
	if strings.TrimSpace(category) == "" {
		return DefaultCategory
	}
	return t.Translate(ctx, category)
}

func cacheKey(text, target string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", text, target)))
	return hex.EncodeToString(hash[:])
}

// sleepContext waits for the delay unless the context ends first.
func sleepContext(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
