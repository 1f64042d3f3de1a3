package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postdock/postdock/internal/models"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Asset, error)
	Remove(ctx context.Context, id int64) error
}

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) (int64, error) {
	query := `
		INSERT INTO assets (user_id, file_name, file_type, file_size, display_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, asset.UserID, asset.FileName, asset.FileType, asset.FileSize, asset.DisplayURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	query := `
		SELECT id, user_id, file_name, file_type, file_size, display_url, created_at
		FROM assets
		WHERE id = $1
	`

	var asset models.Asset
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&asset.UserID,
		&asset.FileName,
		&asset.FileType,
		&asset.FileSize,
		&asset.DisplayURL,
		&asset.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &asset, nil
}

func (r *assetRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM assets WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
