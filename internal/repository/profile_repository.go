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

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository wires a repository backed by pgxpool.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (domain.ProcessingProfile, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, account_id, model, temperature, max_tokens, prompt_name,
		        use_inline_images, seo_description_limit, created_at, updated_at
		 FROM processing_profiles
		 WHERE account_id = $1`,
		accountID,
	)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProcessingProfile{}, ErrNotFound
		}
		return domain.ProcessingProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile domain.ProcessingProfile) (domain.ProcessingProfile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO processing_profiles
		   (id, account_id, model, temperature, max_tokens, prompt_name, use_inline_images, seo_description_limit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (account_id) DO UPDATE SET
		   model = EXCLUDED.model,
		   temperature = EXCLUDED.temperature,
		   max_tokens = EXCLUDED.max_tokens,
		   prompt_name = EXCLUDED.prompt_name,
		   use_inline_images = EXCLUDED.use_inline_images,
		   seo_description_limit = EXCLUDED.seo_description_limit,
		   updated_at = now()
		 RETURNING id, account_id, model, temperature, max_tokens, prompt_name,
		           use_inline_images, seo_description_limit, created_at, updated_at`,
		profile.ID,
		profile.AccountID,
		profile.Model,
		profile.Temperature,
		profile.MaxTokens,
		profile.PromptName,
		profile.UseInlineImages,
		profile.SEODescriptionLimit,
	)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (domain.ProcessingProfile, error) {
	var (
		profile   domain.ProcessingProfile
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.Model,
		&profile.Temperature,
		&profile.MaxTokens,
		&profile.PromptName,
		&profile.UseInlineImages,
		&profile.SEODescriptionLimit,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProcessingProfile{}, err
		}
		return domain.ProcessingProfile{}, fmt.Errorf("failed to scan processing profile: %w", err)
	}
	if createdAt.Valid {
		profile.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		profile.UpdatedAt = updatedAt.Time
	}
	return profile, nil
}
