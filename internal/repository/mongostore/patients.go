package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
)

// PatientStore persists patients in the patients collection.
type PatientStore struct {
	coll *mongo.Collection
}

// NewPatientStore constructs a PatientStore.
func NewPatientStore(db *mongo.Database) *PatientStore {
	return &PatientStore{coll: db.Collection(PatientsCollection)}
}

// Create inserts a patient.
func (s *PatientStore) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, patient); err != nil {
		return fmt.Errorf("insert patient: %w", translate(err))
	}
	return nil
}

// FindByID returns a patient by identifier.
func (s *PatientStore) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// List returns every patient, newest first.
func (s *PatientStore) List(ctx context.Context) ([]models.Patient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, bson.M{}, opts, "list patients")
}

// Search matches term case-insensitively against the name parts. Regex
// metacharacters in term are matched literally.
func (s *PatientStore) Search(ctx context.Context, term string, limit int) ([]models.Patient, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"firstName": rx},
		bson.M{"middleName": rx},
		bson.M{"lastName": rx},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, filter, opts, "search patients")
}

// Delete removes a patient record.
func (s *PatientStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete patient: %w", repository.ErrNotFound)
	}
	return nil
}

func (s *PatientStore) findOne(ctx context.Context, filter bson.M) (*models.Patient, error) {
	var patient models.Patient
	if err := s.coll.FindOne(ctx, filter).Decode(&patient); err != nil {
		return nil, fmt.Errorf("find patient: %w", translate(err))
	}
	return &patient, nil
}

func (s *PatientStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]models.Patient, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	patients := []models.Patient{}
	if err := cur.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return patients, nil
}
