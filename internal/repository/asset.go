package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pouch/internal/domain"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) GetBySlug(ctx context.Context, slug string) (*domain.Asset, error) {
	var a domain.Asset
	err := r.db.QueryRowContext(ctx,
		`SELECT id, slug, name, created_at FROM assets WHERE slug = $1`, slug,
	).Scan(&a.ID, &a.Slug, &a.Name, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetBySlug: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return &a, nil
}

func (r *AssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, slug, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING`,
		asset.ID, asset.Slug, asset.Name, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
