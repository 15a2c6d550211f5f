package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	"github.com/noah-isme/fieldlab-api/internal/repository/mongostore"
	"github.com/noah-isme/fieldlab-api/internal/service"
	"github.com/noah-isme/fieldlab-api/pkg/config"
	"github.com/noah-isme/fieldlab-api/pkg/database"
	"github.com/noah-isme/fieldlab-api/pkg/logger"
)

type userStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CountApprovedAdmins(ctx context.Context, activeOnly bool) (int64, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id string, update models.UserStatusUpdate, at time.Time) error
	Delete(ctx context.Context, id string) error
}

func main() {
	var (
		username  string
		password  string
		role      string
		firstName string
		lastName  string
		approve   bool
	)
	flag.StringVar(&username, "username", "admin", "account username")
	flag.StringVar(&password, "password", "", "account password")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "admin, field_collector, lab_tech or patient")
	flag.StringVar(&firstName, "first-name", "System", "first name")
	flag.StringVar(&lastName, "last-name", "Administrator", "last name")
	flag.BoolVar(&approve, "approve", false, "approve the account after registering it")
	flag.Parse()

	if password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeFn, err := openUsers(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeFn()

	svc := service.NewUserService(users, nil, nil, validator.New(), logr)
	user, err := svc.Register(ctx, models.RegisterRequest{
		Username:  username,
		Password:  password,
		Role:      models.UserRole(role),
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		logr.Fatal("register failed", zap.Error(err))
	}

	if approve && !user.IsApproved {
		if user, err = svc.ApplyUserAction(ctx, user.ID, models.UserActionApprove); err != nil {
			logr.Fatal("approve failed", zap.Error(err))
		}
	}

	logr.Info("user seeded",
		zap.String("id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Bool("approved", user.IsApproved),
	)
}

func openUsers(ctx context.Context, cfg *config.Config) (userStore, func(), error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewUserRepository(db), func() { _ = db.Close() }, nil
	}

	client, db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return mongostore.NewUserStore(db), func() { _ = client.Disconnect(context.Background()) }, nil
}
