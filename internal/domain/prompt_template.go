package domain

// PromptTemplate is a named, versioned prompt document. Templates are loaded
// from disk by name, cached after first load, and immutable at runtime.
type PromptTemplate struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	BasePrompt   string            `json:"base_prompt"`
	Instructions map[string]string `json:"instructions"`
	OutputFormat string            `json:"output_format,omitempty"`
}
