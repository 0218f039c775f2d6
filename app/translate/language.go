package translate

import (
	"unicode"

	"golang.org/x/text/language"
)

// Script tables per language base. Languages not listed fall back to
// Latin, which covers the long tail of feed languages we relay.
var scriptTables = map[string][]*unicode.RangeTable{
	"ru": {unicode.Cyrillic},
	"uk": {unicode.Cyrillic},
	"be": {unicode.Cyrillic},
	"bg": {unicode.Cyrillic},
	"sr": {unicode.Cyrillic},
	"el": {unicode.Greek},
	"ar": {unicode.Arabic},
	"he": {unicode.Hebrew},
	"hi": {unicode.Devanagari},
	"ko": {unicode.Hangul},
	"zh": {unicode.Han},
	"ja": {unicode.Han, unicode.Hiragana, unicode.Katakana},
}

// Detector answers the lightweight script-membership question "is this
// text already in the target language" without calling any provider.
type Detector struct {
	target string
	tables []*unicode.RangeTable
}

// NewDetector canonicalizes the configured language code ("ru",
// "ru-RU", "russian" all reduce to base "ru") and picks its script.
func NewDetector(lang string) *Detector {
	base := "en"
	if tag, err := language.Parse(lang); err == nil {
		if b, confidence := tag.Base(); confidence > language.No {
			base = b.String()
		}
	}

	tables, ok := scriptTables[base]
	if !ok {
		tables = []*unicode.RangeTable{unicode.Latin}
	}

	return &Detector{target: base, tables: tables}
}

// Target returns the canonical base language code.
func (d *Detector) Target() string {
	return d.target
}

// IsTarget reports whether the majority of letters in text belong to
// the target script. Text without letters counts as already-target so
// numeric or symbolic content is never sent to a provider.
func (d *Detector) IsTarget(text string) bool {
	letters := 0
	matched := 0

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, table := range d.tables {
			if unicode.Is(table, r) {
				matched++
				break
			}
		}
	}

	if letters == 0 {
		return true
	}

	return matched*2 >= letters
}
