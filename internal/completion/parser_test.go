package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFieldsJSON(t *testing.T) {
	content := `{"body_html":"<p>Great mug</p>","seo_title":"Mug","seo_description":"A great mug."}`

	fields := ParseFields(content)

	assert.Equal(t, "<p>Great mug</p>", fields.Body)
	assert.Equal(t, "Mug", fields.SEOTitle)
	assert.Equal(t, "A great mug.", fields.SEODescription)
}

func TestParseFieldsFencedJSON(t *testing.T) {
	content := "```json\n{\"body_html\":\"<p>x</p>\",\"seo_title\":\"t\",\"seo_description\":\"d\"}\n```"

	fields := ParseFields(content)

	assert.Equal(t, "<p>x</p>", fields.Body)
	assert.Equal(t, "t", fields.SEOTitle)
}

func TestParseFieldsMarkers(t *testing.T) {
	content := "BODY_HTML:\n<p>line one</p>\n<p>line two</p>\nSEO_TITLE: Mug\nSEO_DESCRIPTION: A great mug."

	fields := ParseFields(content)

	assert.Equal(t, "<p>line one</p>\n<p>line two</p>", fields.Body)
	assert.Equal(t, "Mug", fields.SEOTitle)
	assert.Equal(t, "A great mug.", fields.SEODescription)
}

func TestParseFieldsPartialMarkers(t *testing.T) {
	content := "SEO_TITLE: Mug"

	fields := ParseFields(content)

	assert.Empty(t, fields.Body)
	assert.Equal(t, "Mug", fields.SEOTitle)
}

func TestParseFieldsUnstructuredFallback(t *testing.T) {
	content := "Here is a nice description of the mug."

	fields := ParseFields(content)

	assert.Equal(t, content, fields.Body)
	assert.Empty(t, fields.SEOTitle)
	assert.Empty(t, fields.SEODescription)
}

func TestParseFieldsEmptyJSONObjectYieldsEmptyFields(t *testing.T) {
	fields := ParseFields(`{}`)

	assert.Empty(t, fields.Body)
	assert.Empty(t, fields.SEOTitle)
	assert.Empty(t, fields.SEODescription)
}

func TestParseFieldsOmittedJSONKeysAreEmpty(t *testing.T) {
	fields := ParseFields(`{"body_html":"<p>x</p>"}`)

	assert.Equal(t, "<p>x</p>", fields.Body)
	assert.Empty(t, fields.SEOTitle)
	assert.Empty(t, fields.SEODescription)
}
