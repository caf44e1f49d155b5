package textconv

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  = bluemonday.StrictPolicy()
	htmlConverter = md.NewConverter("", true, nil)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// HTMLToPlain strips all markup and collapses whitespace. Empty input
// stays empty.
func HTMLToPlain(html string) string {
	return collapseWhitespace(strictPolicy.Sanitize(html))
}

// HTMLToMarkdown converts HTML to markdown. When the converter rejects
// the input the tags are stripped instead so the text survives.
func HTMLToMarkdown(html string) string {
	out, err := htmlConverter.ConvertString(html)
	if err != nil {
		return collapseWhitespace(tagPattern.ReplaceAllString(html, " "))
	}
	return strings.TrimSpace(out)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
