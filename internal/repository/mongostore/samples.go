package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
)

// SampleStore persists sample collections.
type SampleStore struct {
	coll *mongo.Collection
}

// NewSampleStore constructs a SampleStore.
func NewSampleStore(db *mongo.Database) *SampleStore {
	return &SampleStore{coll: db.Collection(SamplesCollection)}
}

// Create inserts a sample collection in the pending state.
func (s *SampleStore) Create(ctx context.Context, sample *models.SampleCollection) error {
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now
	}
	if sample.CollectionDate.IsZero() {
		sample.CollectionDate = now
	}
	if sample.LabStatus == "" {
		sample.LabStatus = models.LabStatusPending
	}
	if sample.Images == nil {
		sample.Images = models.SampleImages{}
	}
	sample.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, sample); err != nil {
		return fmt.Errorf("insert sample collection: %w", translate(err))
	}
	return nil
}

// FindByID returns a sample collection by identifier.
func (s *SampleStore) FindByID(ctx context.Context, id string) (*models.SampleCollection, error) {
	var sample models.SampleCollection
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sample); err != nil {
		return nil, fmt.Errorf("find sample collection: %w", translate(err))
	}
	return &sample, nil
}

// List returns samples newest first together with the total count.
func (s *SampleStore) List(ctx context.Context, filter models.SampleFilter) ([]models.SampleCollection, int, error) {
	query := bson.M{}
	if filter.LabStatus != nil {
		query["labStatus"] = *filter.LabStatus
	}
	if filter.PatientID != "" {
		query["patientId"] = filter.PatientID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}
	samples, err := s.find(ctx, query, opts, "list sample collections")
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count sample collections: %w", err)
	}
	return samples, int(total), nil
}

// ListByPatient returns a patient's samples, most recently collected first.
func (s *SampleStore) ListByPatient(ctx context.Context, patientID string) ([]models.SampleCollection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "collectionDate", Value: -1}})
	return s.find(ctx, bson.M{"patientId": patientID}, opts, "list patient samples")
}

// Review writes the outcome as one single-document update. Concurrent reviews
// are not excluded; the last write wins.
func (s *SampleStore) Review(ctx context.Context, id string, review models.SampleReview) error {
	update := bson.M{"$set": bson.M{
		"labStatus":   review.LabStatus,
		"labComments": review.LabComments,
		"reviewedBy":  review.ReviewedBy,
		"reviewedAt":  review.ReviewedAt,
		"updatedAt":   review.ReviewedAt,
	}}
	res, err := s.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("review sample collection: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("review sample collection: %w", repository.ErrNotFound)
	}
	return nil
}

func (s *SampleStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]models.SampleCollection, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	samples := []models.SampleCollection{}
	if err := cur.All(ctx, &samples); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return samples, nil
}
