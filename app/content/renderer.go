package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Inline tags the publish sink's rich-text format accepts. Anything
// else is dropped while its text content is kept.
var allowedTags = map[string]bool{
	"b":          true,
	"strong":     true,
	"i":          true,
	"em":         true,
	"u":          true,
	"ins":        true,
	"s":          true,
	"strike":     true,
	"del":        true,
	"code":       true,
	"pre":        true,
	"a":          true,
	"blockquote": true,
	"span":       true,
	"tg-emoji":   true,
}

// Synonym tags mapped to the canonical form the sink understands.
var tagSynonyms = map[string]string{
	"strong": "b",
	"em":     "i",
	"ins":    "u",
	"strike": "s",
	"del":    "s",
}

// Decorative wrappers whose children are kept while the tag itself is
// dropped.
var unwrappedTags = map[string]bool{
	"span":     true,
	"tg-emoji": true,
}

// RenderRich converts a constrained HTML subset into the sink's
// rich-text format: allow-listed inline tags survive (synonyms mapped
// to canonical ones), br becomes a newline, everything else is
// unwrapped to its text content. All leaf text and attribute values
// are escaped, so the output never injects markup the input did not
// declare. Total: malformed input degrades to escaped text, never an
// error.
func RenderRich(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	// Fragment parsing in body context keeps script/style nodes in
	// place instead of hoisting them into a synthetic head.
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(input), context)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, node := range nodes {
		renderNode(&sb, node)
	}

	return strings.ReplaceAll(sb.String(), "\u00a0", " ")
}

func renderNode(sb *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		sb.WriteString(html.EscapeString(node.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	name := strings.ToLower(node.Data)

	if name == "br" {
		sb.WriteString("\n")
		return
	}

	if !allowedTags[name] {
		renderChildren(sb, node)
		return
	}

	if unwrappedTags[name] {
		renderChildren(sb, node)
		return
	}

	if mapped, ok := tagSynonyms[name]; ok {
		name = mapped
	}

	if name == "a" {
		href := attrValue(node, "href")
		if href == "" {
			renderChildren(sb, node)
			return
		}
		sb.WriteString(`<a href="`)
		sb.WriteString(html.EscapeString(href))
		sb.WriteString(`">`)
		renderChildren(sb, node)
		sb.WriteString("</a>")
		return
	}

	sb.WriteString("<" + name + ">")
	renderChildren(sb, node)
	sb.WriteString("</" + name + ">")
}

func renderChildren(sb *strings.Builder, node *html.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderNode(sb, child)
	}
}

func attrValue(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

