package content

import (
	"strings"
	"testing"
)

func TestRenderRich(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps allowed tags",
			input:    "<b>bold</b> and <i>italic</i>",
			expected: "<b>bold</b> and <i>italic</i>",
		},
		{
			name:     "maps synonyms to canonical tags",
			input:    "<strong>a</strong><em>b</em><ins>c</ins><del>d</del>",
			expected: "<b>a</b><i>b</i><u>c</u><s>d</s>",
		},
		{
			name:     "drops disallowed tags keeping text",
			input:    "<h1>headline</h1><table><tr><td>cell</td></tr></table>",
			expected: "headlinecell",
		},
		{
			name:     "strips script tag keeping inner text",
			input:    "<script>payload</script>",
			expected: "payload",
		},
		{
			name:     "unwraps decorative spans",
			input:    `<span class="emoji"><b>inner</b></span>`,
			expected: "<b>inner</b>",
		},
		{
			name:     "unwraps custom emoji wrapper",
			input:    `<tg-emoji emoji-id="5368324170671202286">👍</tg-emoji>`,
			expected: "👍",
		},
		{
			name:     "br becomes newline",
			input:    "line1<br>line2",
			expected: "line1\nline2",
		},
		{
			name:     "escapes literal angle brackets and ampersands",
			input:    "a &lt; b &amp; c",
			expected: "a &lt; b &amp; c",
		},
		{
			name:     "link with escaped href",
			input:    `<a href="https://example.com/?a=1&b=2">link</a>`,
			expected: `<a href="https://example.com/?a=1&amp;b=2">link</a>`,
		},
		{
			name:     "link without href unwrapped",
			input:    "<a>orphan</a>",
			expected: "orphan",
		},
		{
			name:     "blockquote preserved",
			input:    "<blockquote>quoted</blockquote>",
			expected: "<blockquote>quoted</blockquote>",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "nested disallowed inside allowed",
			input:    "<b><video>clip</video></b>",
			expected: "<b>clip</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderRich(tt.input)
			if got != tt.expected {
				t.Errorf("RenderRich(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRenderRichInjectionSafety(t *testing.T) {
	// A disallowed tag wrapping allowed text must yield the inner text
	// with every literal <, >, & escaped.
	got := RenderRich(`<script>a < b && c > d</script>`)
	if strings.Contains(got, "<script") {
		t.Errorf("Script tag leaked into output: %q", got)
	}

	// Strip valid escapes, then scan for raw metacharacters.
	stripped := strings.NewReplacer("&lt;", "", "&gt;", "", "&amp;", "", "&#34;", "", "&#39;", "").Replace(got)
	for _, raw := range []string{"<", ">", "&"} {
		if strings.Contains(stripped, raw) {
			t.Errorf("Unescaped %q in output: %q", raw, got)
		}
	}
}

func TestRenderRichMalformedInput(t *testing.T) {
	inputs := []string{
		"<b><i>unclosed",
		"<a href='><script>",
		strings.Repeat("<blockquote>", 100),
		"\x00\x01binary",
	}

	for _, input := range inputs {
		// Must not panic
		_ = RenderRich(input)
	}
}
