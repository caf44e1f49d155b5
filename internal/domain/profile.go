package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingProfile is the per-account generation configuration. The batch
// orchestrator reads it and never mutates it; there is no implicit default,
// an account without a profile cannot be processed.
type ProcessingProfile struct {
	ID                  uuid.UUID `json:"id"`
	AccountID           uuid.UUID `json:"account_id"`
	Model               string    `json:"model"`
	Temperature         float64   `json:"temperature"`
	MaxTokens           int       `json:"max_tokens"`
	PromptName          string    `json:"prompt_name"`
	UseInlineImages     bool      `json:"use_inline_images"`
	SEODescriptionLimit int       `json:"seo_description_limit"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
