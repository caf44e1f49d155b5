package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/awickham/feedforge/internal/domain"
)

// ErrUnsupportedTarget is returned when the requested API shape has no
// composer support.
var ErrUnsupportedTarget = errors.New("unsupported completion target")

// TargetOpenAI composes for the OpenAI chat-completions message shape.
// It is the only supported target.
const TargetOpenAI = "openai"

// imagePlaceholder marks where a template wants the image data URI
// substituted into the text instead of attached as a separate part.
const imagePlaceholder = "{{image}}"

// jsonInstruction satisfies the completion API requirement that a request
// using structured output mentions JSON somewhere in the prompt.
const jsonInstruction = "Respond with a single JSON object using the keys body_html, seo_title and seo_description."

// Request carries everything the composer needs for one row.
type Request struct {
	Template         domain.PromptTemplate
	Target           string
	Title            string
	Description      string
	ImageDataURI     string
	StructuredOutput bool
}

// Composed is the assembled prompt. ImageDataURI is empty when no image
// part should be attached.
type Composed struct {
	Text         string
	ImageDataURI string
	ImageDetail  string
}

// Compose assembles the prompt segments in a fixed order: base prompt,
// product context, every named sub-instruction as "NAME: text", output
// format. Sub-instructions are emitted in name order so the prompt is
// deterministic.
func Compose(req Request) (Composed, error) {
	if req.Target != TargetOpenAI {
		return Composed{}, fmt.Errorf("%w: %s", ErrUnsupportedTarget, req.Target)
	}

	segments := make([]string, 0, 4+len(req.Template.Instructions))
	if base := strings.TrimSpace(req.Template.BasePrompt); base != "" {
		segments = append(segments, base)
	}
	segments = append(segments, "Product Title: "+req.Title)
	if desc := strings.TrimSpace(req.Description); desc != "" {
		segments = append(segments, "Existing Description: "+desc)
	}

	names := make([]string, 0, len(req.Template.Instructions))
	for name := range req.Template.Instructions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		segments = append(segments, strings.ToUpper(name)+": "+req.Template.Instructions[name])
	}

	if format := strings.TrimSpace(req.Template.OutputFormat); format != "" {
		segments = append(segments, format)
	}

	text := strings.Join(segments, "\n\n")

	composed := Composed{}
	if req.ImageDataURI != "" {
		if strings.Contains(text, imagePlaceholder) {
			text = strings.ReplaceAll(text, imagePlaceholder, req.ImageDataURI)
		} else {
			composed.ImageDataURI = req.ImageDataURI
			composed.ImageDetail = "low"
		}
	} else {
		text = strings.ReplaceAll(text, imagePlaceholder, "")
	}

	if req.StructuredOutput && !strings.Contains(strings.ToLower(text), "json") {
		text += "\n\n" + jsonInstruction
	}

	composed.Text = text
	return composed, nil
}
