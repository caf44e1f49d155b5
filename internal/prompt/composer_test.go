package prompt

import (
	"strings"
	"testing"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() domain.PromptTemplate {
	return domain.PromptTemplate{
		Name:       "test",
		Version:    "1",
		BasePrompt: "You write product copy.",
		Instructions: map[string]string{
			"description": "Rewrite the description.",
			"seo":         "Write an SEO title and description.",
		},
		OutputFormat: "Return plain text.",
	}
}

func TestComposeSegmentOrder(t *testing.T) {
	composed, err := Compose(Request{
		Template:    testTemplate(),
		Target:      TargetOpenAI,
		Title:       "Coffee Mug",
		Description: "A ceramic mug.",
	})
	require.NoError(t, err)

	text := composed.Text
	positions := []int{
		strings.Index(text, "You write product copy."),
		strings.Index(text, "Product Title: Coffee Mug"),
		strings.Index(text, "Existing Description: A ceramic mug."),
		strings.Index(text, "DESCRIPTION: Rewrite the description."),
		strings.Index(text, "SEO: Write an SEO title and description."),
		strings.Index(text, "Return plain text."),
	}
	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "segment %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "segment %d out of order", i)
		}
	}
}

func TestComposeSkipsEmptyDescription(t *testing.T) {
	composed, err := Compose(Request{
		Template: testTemplate(),
		Target:   TargetOpenAI,
		Title:    "Coffee Mug",
	})
	require.NoError(t, err)
	assert.NotContains(t, composed.Text, "Existing Description:")
}

func TestComposeUnknownTarget(t *testing.T) {
	_, err := Compose(Request{
		Template: testTemplate(),
		Target:   "anthropic",
		Title:    "Coffee Mug",
	})
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}

func TestComposeAttachesImageWithLowDetail(t *testing.T) {
	composed, err := Compose(Request{
		Template:     testTemplate(),
		Target:       TargetOpenAI,
		Title:        "Coffee Mug",
		ImageDataURI: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", composed.ImageDataURI)
	assert.Equal(t, "low", composed.ImageDetail)
	assert.NotContains(t, composed.Text, "base64")
}

func TestComposeSubstitutesImagePlaceholder(t *testing.T) {
	template := testTemplate()
	template.Instructions["image"] = "Look at {{image}} and describe it."

	composed, err := Compose(Request{
		Template:     template,
		Target:       TargetOpenAI,
		Title:        "Coffee Mug",
		ImageDataURI: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Contains(t, composed.Text, "Look at data:image/png;base64,AAAA and describe it.")
	assert.Empty(t, composed.ImageDataURI)
}

func TestComposeAppendsJSONInstructionForStructuredOutput(t *testing.T) {
	composed, err := Compose(Request{
		Template:         testTemplate(),
		Target:           TargetOpenAI,
		Title:            "Coffee Mug",
		StructuredOutput: true,
	})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(composed.Text), "json")
}

func TestComposeDoesNotDuplicateJSONInstruction(t *testing.T) {
	template := testTemplate()
	template.OutputFormat = "Return a JSON object."

	composed, err := Compose(Request{
		Template:         template,
		Target:           TargetOpenAI,
		Title:            "Coffee Mug",
		StructuredOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.ToLower(composed.Text), "json"))
}
