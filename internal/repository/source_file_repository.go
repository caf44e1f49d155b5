package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sourceFileRepository struct {
	pool *pgxpool.Pool
}

// NewSourceFileRepository wires a repository backed by pgxpool.
func NewSourceFileRepository(pool *pgxpool.Pool) SourceFileRepository {
	return &sourceFileRepository{pool: pool}
}

func (r *sourceFileRepository) Create(ctx context.Context, file domain.SourceFile) (domain.SourceFile, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO source_files (id, account_id, file_name, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, account_id, file_name, status, created_at`,
		file.ID,
		file.AccountID,
		file.FileName,
		file.Status,
	)
	return scanSourceFile(row)
}

func (r *sourceFileRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (domain.SourceFile, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, account_id, file_name, status, created_at
		 FROM source_files
		 WHERE id = $1 AND account_id = $2`,
		id,
		accountID,
	)
	file, err := scanSourceFile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SourceFile{}, ErrNotFound
		}
		return domain.SourceFile{}, err
	}
	return file, nil
}

func (r *sourceFileRepository) MarkReady(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE source_files SET status = $1 WHERE id = $2`,
		domain.SourceFileStatusReady,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark source file ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sourceFileRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	// products are removed by the FK cascade.
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM source_files WHERE id = $1 AND account_id = $2`,
		id,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete source file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSourceFile(row pgx.Row) (domain.SourceFile, error) {
	var (
		file      domain.SourceFile
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&file.ID, &file.AccountID, &file.FileName, &file.Status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SourceFile{}, err
		}
		return domain.SourceFile{}, fmt.Errorf("failed to scan source file: %w", err)
	}
	if createdAt.Valid {
		file.CreatedAt = createdAt.Time
	}
	return file, nil
}
