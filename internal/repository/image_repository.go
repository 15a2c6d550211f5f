package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fieldlab-api/internal/models"
)

// ImageRepository stores metadata for uploaded sample images.
type ImageRepository struct {
	db *sqlx.DB
}

// NewImageRepository constructs an ImageRepository.
func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts image metadata.
func (r *ImageRepository) Create(ctx context.Context, image *models.ImageRecord) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	if image.UploadedAt.IsZero() {
		image.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sample_images (id, filename, content_type, size, path, uploaded_by, uploaded_at) VALUES (:id, :filename, :content_type, :size, :path, :uploaded_by, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("create sample image: %w", translate(err))
	}
	return nil
}

// FindByID returns image metadata by identifier.
func (r *ImageRepository) FindByID(ctx context.Context, id string) (*models.ImageRecord, error) {
	const query = `SELECT id, filename, content_type, size, path, uploaded_by, uploaded_at FROM sample_images WHERE id = $1 LIMIT 1`
	var image models.ImageRecord
	if err := r.db.GetContext(ctx, &image, query, id); err != nil {
		return nil, fmt.Errorf("find sample image: %w", translate(err))
	}
	return &image, nil
}

// Delete removes image metadata.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sample_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sample image: %w", err)
	}
	return requireAffected(res, "delete sample image")
}
