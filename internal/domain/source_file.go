package domain

import (
	"time"

	"github.com/google/uuid"
)

// SourceFileStatus tracks the ingest lifecycle of an uploaded feed.
type SourceFileStatus string

const (
	SourceFileStatusProcessing SourceFileStatus = "Processing"
	SourceFileStatusReady      SourceFileStatus = "Ready"
)

// SourceFile represents one ingested product feed upload. Everything except
// the status is immutable after ingest.
type SourceFile struct {
	ID        uuid.UUID        `json:"id"`
	AccountID uuid.UUID        `json:"account_id"`
	FileName  string           `json:"file_name"`
	Status    SourceFileStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewSourceFile creates a source file record in the Processing state.
func NewSourceFile(accountID uuid.UUID, fileName string) SourceFile {
	return SourceFile{
		ID:        uuid.New(),
		AccountID: accountID,
		FileName:  fileName,
		Status:    SourceFileStatusProcessing,
		CreatedAt: time.Now(),
	}
}

// RawKey returns the retention key for the original upload bytes. The ingest
// writer and the export reader must derive the same key.
func (f SourceFile) RawKey() string {
	return f.ID.String() + "_" + f.FileName
}
