package completion

import (
	"encoding/json"
	"strings"

	"github.com/awickham/feedforge/internal/domain"
)

// Fields is the structured payload expected back from the model.
type Fields struct {
	BodyHTML       string `json:"body_html"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
}

// ParseFields extracts the enriched fields from a model response. JSON is
// tried first, then labelled markers. The parser never fails: a response
// that matches neither shape lands wholesale in the body field. A response
// that parses as a JSON object is authoritative, so keys it omits come
// back as empty fields rather than falling through to the marker scan.
func ParseFields(content string) domain.ProductFields {
	trimmed := stripCodeFence(strings.TrimSpace(content))

	if fields, ok := parseJSON(trimmed); ok {
		return fields
	}
	if fields, ok := parseMarkers(trimmed); ok {
		return fields
	}
	return domain.ProductFields{Body: trimmed}
}

func parseJSON(content string) (domain.ProductFields, bool) {
	// Only a JSON object counts: bare literals like null or "text" would
	// also unmarshal cleanly and swallow plain prose responses.
	if !strings.HasPrefix(content, "{") {
		return domain.ProductFields{}, false
	}
	var fields Fields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return domain.ProductFields{}, false
	}
	return domain.ProductFields{
		Body:           strings.TrimSpace(fields.BodyHTML),
		SEOTitle:       strings.TrimSpace(fields.SEOTitle),
		SEODescription: strings.TrimSpace(fields.SEODescription),
	}, true
}

var markers = []string{"BODY_HTML:", "SEO_TITLE:", "SEO_DESCRIPTION:"}

func parseMarkers(content string) (domain.ProductFields, bool) {
	sections := map[string]string{}
	current := ""
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		marker, rest := matchMarker(line)
		if marker != "" {
			flush()
			current = marker
			buf.WriteString(rest)
			buf.WriteString("\n")
			continue
		}
		if current != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	if len(sections) == 0 {
		return domain.ProductFields{}, false
	}
	return domain.ProductFields{
		Body:           sections["BODY_HTML:"],
		SEOTitle:       sections["SEO_TITLE:"],
		SEODescription: sections["SEO_DESCRIPTION:"],
	}, true
}

func matchMarker(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	for _, marker := range markers {
		if strings.HasPrefix(trimmed, marker) {
			return marker, strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		}
	}
	return "", ""
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	// Drop the opening fence line and a trailing fence if present.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
