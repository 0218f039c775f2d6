package content

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{
			name:     "strips markup",
			input:    "<p>Hello <b>world</b></p>",
			limit:    0,
			expected: "Hello world",
		},
		{
			name:     "decodes entities",
			input:    "Fish &amp; chips &lt;now&gt;",
			limit:    0,
			expected: "Fish & chips <now>",
		},
		{
			name:     "collapses whitespace",
			input:    "a\n\n   b\t\tc",
			limit:    0,
			expected: "a b c",
		},
		{
			name:     "strips boilerplate",
			input:    "Breaking story Реклама continues",
			limit:    0,
			expected: "Breaking story continues",
		},
		{
			name:     "drops script content",
			input:    "<script>alert(1)</script>visible",
			limit:    0,
			expected: "visible",
		},
		{
			name:     "empty input",
			input:    "",
			limit:    100,
			expected: "",
		},
		{
			name:     "block boundaries become separators",
			input:    "<div>one</div><div>two</div>",
			limit:    0,
			expected: "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlainText(tt.input, tt.limit)
			if got != tt.expected {
				t.Errorf("PlainText(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPlainTextTruncation(t *testing.T) {
	got := PlainText(strings.Repeat("x", 500), 100)
	if len([]rune(got)) != 100 {
		t.Errorf("Expected 100 runes after truncation, got %d", len([]rune(got)))
	}

	// Truncation must be rune-safe for multibyte text
	got = PlainText(strings.Repeat("ж", 500), 100)
	if len([]rune(got)) != 100 {
		t.Errorf("Expected 100 runes for cyrillic input, got %d", len([]rune(got)))
	}
}

func TestPlainTextMalformedInput(t *testing.T) {
	inputs := []string{
		"<b><i>deeply <u>nested",
		"<<<<>>>>",
		"<a href='unclosed",
		strings.Repeat("<div>", 200),
	}

	for _, input := range inputs {
		// Must not panic, any string result is acceptable
		_ = PlainText(input, 50)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Title", "Body text")
	b := Fingerprint("Title", "Body text")
	if a != b {
		t.Error("Identical content must produce identical fingerprints")
	}

	c := Fingerprint("Title", "Different body")
	if a == c {
		t.Error("Different content must produce different fingerprints")
	}

	// Whitespace and case variations hash the same
	d := Fingerprint("  title ", "body   TEXT")
	e := Fingerprint("Title", "Body text")
	if d != e {
		t.Error("Fingerprint must be stable under case and whitespace variation")
	}

	if len(a) != 64 {
		t.Errorf("Expected sha256 hex fingerprint, got length %d", len(a))
	}
}

func TestFingerprintEmptyContent(t *testing.T) {
	// Text-less (photo-only) items carry no content to compare; a
	// shared constant hash would dedup them against each other.
	inputs := [][2]string{
		{"", ""},
		{"   ", ""},
		{"", " \n\t "},
	}

	for _, input := range inputs {
		if got := Fingerprint(input[0], input[1]); got != "" {
			t.Errorf("Fingerprint(%q, %q) = %q, expected empty", input[0], input[1], got)
		}
	}

	if got := Fingerprint("Title", ""); got == "" {
		t.Error("Expected non-empty fingerprint when a title is present")
	}
}
