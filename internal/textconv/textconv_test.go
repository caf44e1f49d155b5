package textconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("# Title\n\nSome **bold** text.")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestMarkdownToHTMLKeepsRawHTML(t *testing.T) {
	out, err := MarkdownToHTML("before <br> after")
	require.NoError(t, err)
	assert.Contains(t, out, "<br>")
}

func TestMarkdownToPlain(t *testing.T) {
	out := MarkdownToPlain("# Title\n\nSome **bold** text with a [link](https://example.com).\n\n- item one\n- item two")
	assert.Equal(t, "Title Some bold text with a link. item one item two", out)
}

func TestMarkdownToPlainCodeBlocks(t *testing.T) {
	out := MarkdownToPlain("```go\ncode here\n```")
	assert.Equal(t, "code here", out)
}

func TestMarkdownToPlainRulesAndNumberedLists(t *testing.T) {
	out := MarkdownToPlain("intro\n\n---\n\n1. first\n2. second")
	assert.Equal(t, "intro first second", out)
}

func TestHTMLToPlain(t *testing.T) {
	out := HTMLToPlain("<p>Hello   <b>world</b></p>\n<p>second</p>")
	assert.Equal(t, "Hello world second", out)
}

func TestHTMLToPlainEmpty(t *testing.T) {
	assert.Equal(t, "", HTMLToPlain(""))
}

func TestHTMLToMarkdown(t *testing.T) {
	out := HTMLToMarkdown("<p>Hello <strong>world</strong></p>")
	assert.Contains(t, out, "**world**")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 100))
	assert.Equal(t, "", TruncateRunes("", 10))
	assert.Equal(t, "one two", TruncateRunes("one two three", 9))
	assert.Equal(t, strings.Repeat("x", 5), TruncateRunes(strings.Repeat("x", 20), 5))
	assert.Equal(t, "one two three", TruncateRunes("one two three", 0))
}
