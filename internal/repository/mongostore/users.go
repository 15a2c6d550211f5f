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

// UserStore persists accounts in the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

// Create inserts a user. The unique username index turns a taken name into
// repository.ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

// FindByID returns a user by identifier.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByUsername returns a user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, fmt.Errorf("find user: %w", translate(err))
	}
	return &user, nil
}

// CountApprovedAdmins counts approved admins, optionally only the active ones.
func (s *UserStore) CountApprovedAdmins(ctx context.Context, activeOnly bool) (int64, error) {
	filter := bson.M{"role": models.RoleAdmin, "isApproved": true}
	if activeOnly {
		filter["isActive"] = true
	}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count approved admins: %w", err)
	}
	return n, nil
}

// List returns a page of users, newest first, and the total match count.
func (s *UserStore) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	query := bson.M{}
	if filter.Role != nil {
		query["role"] = *filter.Role
	}
	if filter.IsApproved != nil {
		query["isApproved"] = *filter.IsApproved
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}
	if filter.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"username": rx},
			bson.M{"firstName": rx},
			bson.M{"lastName": rx},
		}
	}

	skip, limit := pageOptions(filter.Page, filter.PageSize)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, int(total), nil
}

// UpdateStatus sets the approval flags present in update.
func (s *UserStore) UpdateStatus(ctx context.Context, id string, update models.UserStatusUpdate, at time.Time) error {
	set := bson.M{"updatedAt": at}
	if update.IsApproved != nil {
		set["isApproved"] = *update.IsApproved
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}
	return s.updateByID(ctx, id, set, "update user status")
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"password": passwordHash, "updatedAt": at}, "update password")
}

// UpdateLastLogin stamps the last successful login.
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"lastLogin": at, "updatedAt": at}, "update last login")
}

func (s *UserStore) updateByID(ctx context.Context, id string, set bson.M, op string) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

// Delete removes the user permanently.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete user: %w", repository.ErrNotFound)
	}
	return nil
}
