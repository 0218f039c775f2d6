package content

import (
	"strings"

	"golang.org/x/net/html"
)

// Boilerplate substrings stripped from extracted text before
// publication: ad markers, trailing attributions, ellipsis artifacts.
var boilerplate = []string{
	"Advertisement",
	"Sponsored",
	"Read more ›",
	"Read more >>",
	"Continue reading...",
	"Реклама",
	"Читать далее",
	"Подробнее...",
	"[…]",
	"&#8230;",
}

// PlainText reduces arbitrary markup to whitespace-collapsed plain
// text, strips known boilerplate and hard-truncates to limit runes.
// Total: any input, including malformed markup, yields a string
// (worst case empty).
func PlainText(input string, limit int) string {
	text := stripMarkup(input)

	for _, marker := range boilerplate {
		text = strings.ReplaceAll(text, marker, " ")
	}

	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.Join(strings.Fields(text), " ")

	return Truncate(text, limit)
}

// Truncate cuts a string to at most limit runes. A non-positive limit
// means no truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// stripMarkup walks the parsed tree collecting text content, with
// line breaks for br and block-level boundaries so adjacent blocks do
// not concatenate into one word.
func stripMarkup(input string) string {
	if input == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			sb.WriteString(node.Data)
		case html.ElementNode:
			switch node.Data {
			case "br", "p", "div", "li", "blockquote":
				sb.WriteString("\n")
			case "script", "style":
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return sb.String()
}
