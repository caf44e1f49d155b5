package repository

import (
	"context"
	"fmt"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type processingLogRepository struct {
	pool *pgxpool.Pool
}

// NewProcessingLogRepository wires a repository backed by pgxpool.
func NewProcessingLogRepository(pool *pgxpool.Pool) ProcessingLogRepository {
	return &processingLogRepository{pool: pool}
}

func (r *processingLogRepository) Record(ctx context.Context, entry domain.ProcessingLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("processing log repository not initialized")
	}

	var productID any
	if entry.ProductID != nil {
		productID = *entry.ProductID
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO processing_logs (account_id, product_id, stage, error_message)
		 VALUES ($1, $2, $3, $4)`,
		entry.AccountID,
		productID,
		entry.Stage,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record processing log: %w", err)
	}
	return nil
}

func (r *processingLogRepository) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.ProcessingLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("processing log repository not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, account_id, product_id, stage, error_message, created_at
		 FROM processing_logs
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		accountID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ProcessingLogEntry{}
	for rows.Next() {
		var (
			entry     domain.ProcessingLogEntry
			productID pgtype.UUID
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&productID,
			&entry.Stage,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan processing log: %w", scanErr)
		}
		if productID.Valid {
			id := uuid.UUID(productID.Bytes)
			entry.ProductID = &id
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		logs = append(logs, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate processing logs: %w", rowsErr)
	}
	return logs, nil
}
