// Package mongostore implements the repositories on top of MongoDB. Documents use
// string UUID identifiers in _id so both storage drivers share one id space.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/fieldlab-api/internal/repository"
)

// Collection names.
const (
	UsersCollection    = "users"
	PatientsCollection = "patients"
	SamplesCollection  = "sample_collections"
	ImagesCollection   = "sample_images"
)

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "isApproved", Value: 1}}},
		},
		PatientsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "firstName", Value: 1}, {Key: "lastName", Value: 1}}},
		},
		SamplesCollection: {
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "collectionDate", Value: -1}}},
			{Keys: bson.D{{Key: "labStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto the shared repository sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}

func pageOptions(page, pageSize int) (skip, limit int64) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return int64((page - 1) * pageSize), int64(pageSize)
}
