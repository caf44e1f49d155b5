package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus is the enrichment lifecycle of a single product row.
// A row is created Pending and moved exactly once to a terminal status.
type ProductStatus string

const (
	ProductStatusPending   ProductStatus = "Pending"
	ProductStatusCompleted ProductStatus = "Completed"
	ProductStatusFailed    ProductStatus = "Failed"
)

// ProductFields holds the feed columns the pipeline reads and rewrites.
type ProductFields struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	ImageURL       string `json:"image_url"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
}

// Product is one enrichable row of a source file. Lines that share a handle
// but carry no title are variants, not products, and never become rows.
type Product struct {
	ID           uuid.UUID     `json:"id"`
	AccountID    uuid.UUID     `json:"account_id"`
	SourceFileID uuid.UUID     `json:"source_file_id"`
	Handle       string        `json:"handle"`
	RowIndex     int           `json:"row_index"`
	Input        ProductFields `json:"input"`
	Output       ProductFields `json:"output"`
	Status       ProductStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewProduct creates a pending product row for a source file.
func NewProduct(accountID, sourceFileID uuid.UUID, handle string, rowIndex int, input ProductFields) Product {
	return Product{
		ID:           uuid.New(),
		AccountID:    accountID,
		SourceFileID: sourceFileID,
		Handle:       handle,
		RowIndex:     rowIndex,
		Input:        input,
		Status:       ProductStatusPending,
		CreatedAt:    time.Now(),
	}
}
