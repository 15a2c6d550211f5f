package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func userDoc(id, username string, role models.UserRole, approved, active bool) bson.D {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "password", Value: "hash"},
		{Key: "role", Value: string(role)},
		{Key: "firstName", Value: "First"},
		{Key: "lastName", Value: "Last"},
		{Key: "isApproved", Value: approved},
		{Key: "isActive", Value: active},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestUserStore(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Username: "alice", Role: models.RoleLabTech}
		require.NoError(mt, store.Create(ctx, user))
		assert.NotEmpty(mt, user.ID)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("create duplicate username", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: username_unique",
		}))

		err := store.Create(ctx, &models.User{Username: "alice", Role: models.RoleLabTech})
		require.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("find by username", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch,
			userDoc("u1", "root", models.RoleAdmin, true, true)))

		user, err := store.FindByUsername(ctx, "root")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.ID)
		assert.Equal(mt, models.RoleAdmin, user.Role)
		assert.Equal(mt, "hash", user.PasswordHash)
		assert.True(mt, user.IsApproved)
	})

	mt.Run("find missing user", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch))

		_, err := store.FindByID(ctx, "ghost")
		require.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("count approved admins", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		n, err := store.CountApprovedAdmins(ctx, false)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), n)
	})

	mt.Run("list with total", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch,
				userDoc("u1", "alice", models.RoleLabTech, false, false),
				userDoc("u2", "bob", models.RoleFieldCollector, true, true)),
			mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(2)}}),
		)

		users, total, err := store.List(ctx, models.UserFilter{Search: "a.b"})
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
		assert.Equal(mt, 2, total)
	})

	mt.Run("update status", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		yes := true
		err := store.UpdateStatus(ctx, "u1", models.UserStatusUpdate{IsApproved: &yes, IsActive: &yes}, time.Now())
		require.NoError(mt, err)
	})

	mt.Run("update status unknown user", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		no := false
		err := store.UpdateStatus(ctx, "ghost", models.UserStatusUpdate{IsActive: &no}, time.Now())
		require.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete then lookup", func(mt *mtest.T) {
		store := NewUserStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, "fieldlab.users", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(mt, store.Delete(ctx, "u1"))
		_, err := store.FindByID(ctx, "u1")
		require.ErrorIs(mt, err, repository.ErrNotFound)
		require.ErrorIs(mt, store.Delete(ctx, "u1"), repository.ErrNotFound)
	})
}
