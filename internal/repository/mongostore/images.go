package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
)

// ImageStore keeps metadata of uploaded images. Bytes live in blob storage.
type ImageStore struct {
	coll *mongo.Collection
}

// NewImageStore constructs an ImageStore.
func NewImageStore(db *mongo.Database) *ImageStore {
	return &ImageStore{coll: db.Collection(ImagesCollection)}
}

// Create inserts image metadata.
func (s *ImageStore) Create(ctx context.Context, image *models.ImageRecord) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	if image.UploadedAt.IsZero() {
		image.UploadedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, image); err != nil {
		return fmt.Errorf("insert sample image: %w", translate(err))
	}
	return nil
}

// FindByID returns image metadata by identifier.
func (s *ImageStore) FindByID(ctx context.Context, id string) (*models.ImageRecord, error) {
	var image models.ImageRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&image); err != nil {
		return nil, fmt.Errorf("find sample image: %w", translate(err))
	}
	return &image, nil
}

// Delete removes image metadata.
func (s *ImageStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete sample image: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete sample image: %w", repository.ErrNotFound)
	}
	return nil
}
