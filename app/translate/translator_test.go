package translate

import (
	"context"
	"fmt"
	"testing"
)

// mockProvider implements Provider for testing the fallback chain
type mockProvider struct {
	name    string
	results []string
	errs    []error
	calls   int
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Translate(ctx context.Context, text, target string) (string, error) {
	i := m.calls
	m.calls++
	if i >= len(m.results) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return m.results[i], m.errs[i]
}

// mapCache implements Cache over a plain map
type mapCache struct {
	data map[string]string
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Translation(key string) (string, bool) {
	value, ok := c.data[key]
	return value, ok
}

func (c *mapCache) SetTranslation(key, value string) {
	c.data[key] = value
	c.sets++
}

func TestTranslateSkipsTargetLanguageText(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	translator := NewTranslator(primary, nil, NewDetector("ru"), newMapCache(), 0)

	got := translator.Translate(context.Background(), "Уже на русском языке")
	if got != "Уже на русском языке" {
		t.Errorf("Expected text passed through unchanged, got %q", got)
	}
	if primary.calls != 0 {
		t.Errorf("Expected no provider calls for target-language text, got %d", primary.calls)
	}
}

func TestTranslatePrimarySuccess(t *testing.T) {
	primary := &mockProvider{name: "primary", results: []string{"Привет, мир"}, errs: []error{nil}}
	cache := newMapCache()
	translator := NewTranslator(primary, nil, NewDetector("ru"), cache, 0)

	got := translator.Translate(context.Background(), "Hello world")
	if got != "Привет, мир" {
		t.Errorf("Expected translation, got %q", got)
	}
	if cache.sets != 1 {
		t.Errorf("Expected successful translation to be cached, sets=%d", cache.sets)
	}
}

func TestTranslateFallbackToSecondary(t *testing.T) {
	primary := &mockProvider{
		name:    "primary",
		results: []string{"", ""},
		errs:    []error{fmt.Errorf("boom"), fmt.Errorf("boom again")},
	}
	secondary := &mockProvider{name: "secondary", results: []string{"Запасной перевод"}, errs: []error{nil}}
	cache := newMapCache()
	translator := NewTranslator(primary, secondary, NewDetector("ru"), cache, 0)

	got := translator.Translate(context.Background(), "Fallback please")
	if got != "Запасной перевод" {
		t.Errorf("Expected secondary provider result, got %q", got)
	}
	if primary.calls != 2 {
		t.Errorf("Expected primary to be tried twice, got %d", primary.calls)
	}
	if secondary.calls != 1 {
		t.Errorf("Expected secondary to be tried once, got %d", secondary.calls)
	}

	// A subsequent identical call must hit the cache, no provider calls
	got = translator.Translate(context.Background(), "Fallback please")
	if got != "Запасной перевод" {
		t.Errorf("Expected cached result, got %q", got)
	}
	if primary.calls != 2 || secondary.calls != 1 {
		t.Errorf("Expected cache hit without provider calls, primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestTranslateWrongScriptCountsAsFailure(t *testing.T) {
	// Primary "succeeds" but returns untranslated latin text twice
	primary := &mockProvider{
		name:    "primary",
		results: []string{"still english", "still english"},
		errs:    []error{nil, nil},
	}
	secondary := &mockProvider{name: "secondary", results: []string{"Наконец перевод"}, errs: []error{nil}}
	translator := NewTranslator(primary, secondary, NewDetector("ru"), newMapCache(), 0)

	got := translator.Translate(context.Background(), "wrong script test")
	if got != "Наконец перевод" {
		t.Errorf("Expected wrong-script output rejected in favor of secondary, got %q", got)
	}
}

func TestTranslateAllProvidersFail(t *testing.T) {
	primary := &mockProvider{
		name:    "primary",
		results: []string{"", ""},
		errs:    []error{fmt.Errorf("down"), fmt.Errorf("down")},
	}
	secondary := &mockProvider{name: "secondary", results: []string{""}, errs: []error{fmt.Errorf("also down")}}
	cache := newMapCache()
	translator := NewTranslator(primary, secondary, NewDetector("ru"), cache, 0)

	original := "untranslatable text"
	got := translator.Translate(context.Background(), original)
	if got != original {
		t.Errorf("Expected original text on total failure, got %q", got)
	}
	if cache.sets != 0 {
		t.Error("Failed translations must not be cached")
	}
}

func TestTranslateEmptyText(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	translator := NewTranslator(primary, nil, NewDetector("ru"), newMapCache(), 0)

	if got := translator.Translate(context.Background(), "   "); got != "   " {
		t.Errorf("Expected blank text passed through, got %q", got)
	}
	if primary.calls != 0 {
		t.Error("Expected no provider calls for blank text")
	}
}

func TestTranslateCategory(t *testing.T) {
	primary := &mockProvider{name: "primary", results: []string{"Экономика"}, errs: []error{nil}}
	translator := NewTranslator(primary, nil, NewDetector("ru"), newMapCache(), 0)

	if got := translator.TranslateCategory(context.Background(), ""); got != DefaultCategory {
		t.Errorf("Expected default category for empty input, got %q", got)
	}

	if got := translator.TranslateCategory(context.Background(), "Economy"); got != "Экономика" {
		t.Errorf("Expected translated category, got %q", got)
	}
}
