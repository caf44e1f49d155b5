package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingLogEntry captures row level failures that occur while enriching
// a product, so a batch can be inspected after the fact.
type ProcessingLogEntry struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"account_id"`
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	Stage        string     `json:"stage"`
	ErrorMessage string     `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
}
