package repository

import (
	"context"
	"fmt"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository wires a repository backed by pgxpool.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, account_id, source_file_id, handle, row_index,
	input_title, input_body, input_image, input_seo_title, input_seo_description,
	output_body, output_seo_title, output_seo_description,
	status, error_message, created_at`

func (r *productRepository) CreateBatch(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(
			`INSERT INTO products (id, account_id, source_file_id, handle, row_index,
				input_title, input_body, input_image, input_seo_title, input_seo_description, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID,
			p.AccountID,
			p.SourceFileID,
			p.Handle,
			p.RowIndex,
			p.Input.Title,
			p.Input.Body,
			p.Input.ImageURL,
			p.Input.SEOTitle,
			p.Input.SEODescription,
			p.Status,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range products {
		if _, err := results.Exec(); err != nil {
			return inserted, fmt.Errorf("failed to insert product batch: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (r *productRepository) ListPending(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE account_id = $1 AND status = $2
		 ORDER BY created_at, row_index`,
		accountID,
		domain.ProductStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepository) ListBySourceFile(ctx context.Context, sourceFileID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE source_file_id = $1
		 ORDER BY row_index`,
		sourceFileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by source file: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepository) ListCompletedBySourceFile(ctx context.Context, sourceFileID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE source_file_id = $1 AND status = $2
		 ORDER BY row_index`,
		sourceFileID,
		domain.ProductStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// MarkCompleted is a compare-and-swap on the Pending status so concurrent
// orchestrator runs cannot double-process a row.
func (r *productRepository) MarkCompleted(ctx context.Context, id uuid.UUID, output domain.ProductFields) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE products
		 SET output_body = $1, output_seo_title = $2, output_seo_description = $3,
		     status = $4, error_message = ''
		 WHERE id = $5 AND status = $6`,
		output.Body,
		output.SEOTitle,
		output.SEODescription,
		domain.ProductStatusCompleted,
		id,
		domain.ProductStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark product completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *productRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE products
		 SET status = $1, error_message = $2
		 WHERE id = $3 AND status = $4`,
		domain.ProductStatusFailed,
		message,
		id,
		domain.ProductStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark product failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var (
			p         domain.Product
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&p.ID,
			&p.AccountID,
			&p.SourceFileID,
			&p.Handle,
			&p.RowIndex,
			&p.Input.Title,
			&p.Input.Body,
			&p.Input.ImageURL,
			&p.Input.SEOTitle,
			&p.Input.SEODescription,
			&p.Output.Body,
			&p.Output.SEOTitle,
			&p.Output.SEODescription,
			&p.Status,
			&p.ErrorMessage,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
