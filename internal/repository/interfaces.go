package repository

import (
	"context"
	"errors"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to a
	// different account.
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict is returned when a compare-and-swap status update
	// matched no row, i.e. another worker already moved the row out of
	// Pending.
	ErrStatusConflict = errors.New("row status conflict")
)

// SourceFileRepository defines the interface for source file operations.
type SourceFileRepository interface {
	Create(ctx context.Context, file domain.SourceFile) (domain.SourceFile, error)
	GetByID(ctx context.Context, accountID, id uuid.UUID) (domain.SourceFile, error)
	MarkReady(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

// ProductRepository defines the interface for product row operations.
type ProductRepository interface {
	CreateBatch(ctx context.Context, products []domain.Product) (int, error)
	ListPending(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error)
	ListBySourceFile(ctx context.Context, sourceFileID uuid.UUID) ([]domain.Product, error)
	ListCompletedBySourceFile(ctx context.Context, sourceFileID uuid.UUID) ([]domain.Product, error)

	// MarkCompleted writes the output fields and advances the row from
	// Pending to Completed. MarkFailed advances it from Pending to Failed.
	// Both return ErrStatusConflict when the row is no longer Pending.
	MarkCompleted(ctx context.Context, id uuid.UUID, output domain.ProductFields) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// ProfileRepository defines the interface for processing profile operations.
type ProfileRepository interface {
	GetByAccount(ctx context.Context, accountID uuid.UUID) (domain.ProcessingProfile, error)
	Upsert(ctx context.Context, profile domain.ProcessingProfile) (domain.ProcessingProfile, error)
}

// ProcessingLogRepository stores row level enrichment failures for
// observability.
type ProcessingLogRepository interface {
	Record(ctx context.Context, entry domain.ProcessingLogEntry) error
	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.ProcessingLogEntry, error)
}
