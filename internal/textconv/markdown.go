package textconv

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownToHTML renders markdown as HTML.
func MarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var (
	mdHeading   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBold      = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	mdItalic    = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdImage     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdCode      = regexp.MustCompile("`([^`]*)`")
	mdCodeBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	mdRule      = regexp.MustCompile(`(?m)^\s*(?:[-*_]\s*){3,}$`)
	mdBullet    = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`)
)

// MarkdownToPlain strips markdown syntax, leaving readable text. Used for
// fields that must never carry formatting, like SEO titles.
func MarkdownToPlain(markdown string) string {
	text := markdown
	text = mdCodeBlock.ReplaceAllString(text, "$1")
	text = mdRule.ReplaceAllString(text, "")
	text = mdImage.ReplaceAllString(text, "$1")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdHeading.ReplaceAllString(text, "")
	text = mdBold.ReplaceAllString(text, "$1$2")
	text = mdItalic.ReplaceAllString(text, "$1$2")
	text = mdCode.ReplaceAllString(text, "$1")
	text = mdBullet.ReplaceAllString(text, "")
	return collapseWhitespace(text)
}
