package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/noah-isme/fieldlab-api/api/swagger"
	"github.com/noah-isme/fieldlab-api/internal/handler"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	"github.com/noah-isme/fieldlab-api/internal/repository/mongostore"
	"github.com/noah-isme/fieldlab-api/internal/router"
	"github.com/noah-isme/fieldlab-api/internal/service"
	"github.com/noah-isme/fieldlab-api/pkg/cache"
	"github.com/noah-isme/fieldlab-api/pkg/config"
	"github.com/noah-isme/fieldlab-api/pkg/database"
	"github.com/noah-isme/fieldlab-api/pkg/logger"
	"github.com/noah-isme/fieldlab-api/pkg/storage"
)

// @title Fieldlab API
// @version 1.0.0
// @description Field sample collection, lab review and patient results
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountApprovedAdmins(ctx context.Context, activeOnly bool) (int64, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id string, update models.UserStatusUpdate, at time.Time) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type patientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context) ([]models.Patient, error)
	Search(ctx context.Context, term string, limit int) ([]models.Patient, error)
	Delete(ctx context.Context, id string) error
}

type sampleStore interface {
	Create(ctx context.Context, sample *models.SampleCollection) error
	FindByID(ctx context.Context, id string) (*models.SampleCollection, error)
	List(ctx context.Context, filter models.SampleFilter) ([]models.SampleCollection, int, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.SampleCollection, error)
	Review(ctx context.Context, id string, review models.SampleReview) error
}

type imageStore interface {
	Create(ctx context.Context, image *models.ImageRecord) error
	FindByID(ctx context.Context, id string) (*models.ImageRecord, error)
	Delete(ctx context.Context, id string) error
}

// stores is the selected storage driver with its lifetime hooks.
type stores struct {
	users    userStore
	patients patientStore
	samples  sampleStore
	images   imageStore
	check    handler.ReadinessCheck
	close    func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.close(closeCtx); err != nil {
			logr.Warn("failed to close storage", zap.Error(err))
		}
	}()
	logr.Info("storage connected", zap.String("driver", cfg.StorageDriver))

	metrics := service.NewMetricsService()
	checks := []handler.ReadinessCheck{db.check}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			redisRepo := repository.NewCacheRepository(client, logr)
			cacheRepo = redisRepo
			checks = append(checks, handler.ReadinessCheck{Name: "redis", Ping: redisRepo.Ping})
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.SampleListTTL, logr, cfg.Cache.Enabled)

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		return err
	}
	signer := storage.NewSignedURLSigner(cfg.Files.SignedURLSecret, cfg.Files.SignedURLTTL)
	validate := validator.New()

	authSvc := service.NewAuthService(db.users, cacheSvc, metrics, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AccountStatusTTL:  cfg.Cache.AccountStatusTTL,
	})
	userSvc := service.NewUserService(db.users, cacheSvc, metrics, validate, logr)
	patientSvc := service.NewPatientService(db.patients, db.users, validate, logr, cfg.Patients.OTPLength)
	imageSvc := service.NewImageService(db.images, files, signer, metrics, logr, service.ImageServiceConfig{
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	sampleSvc := service.NewSampleService(db.samples, db.patients, imageSvc, cacheSvc, metrics, logr, service.SampleServiceConfig{
		MaxImages: cfg.Uploads.MaxImages,
		ListTTL:   cfg.Cache.SampleListTTL,
	})
	resultSvc := service.NewResultService(db.users, db.patients, db.samples, nil, logr)

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Verifier:       authSvc,
	}, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, userSvc),
		Users:    handler.NewUserHandler(userSvc),
		Patients: handler.NewPatientHandler(patientSvc),
		Samples:  handler.NewSampleHandler(sampleSvc, imageSvc, handler.SampleBodyLimit(cfg.Uploads.MaxImages, cfg.Uploads.MaxFileSizeBytes)),
		Results:  handler.NewResultHandler(resultSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks...),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgresStores(db), nil
	case config.StorageMongo, "":
		client, mdb, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongoStores(client, mdb), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func postgresStores(db *sqlx.DB) *stores {
	return &stores{
		users:    repository.NewUserRepository(db),
		patients: repository.NewPatientRepository(db),
		samples:  repository.NewSampleRepository(db),
		images:   repository.NewImageRepository(db),
		check:    handler.ReadinessCheck{Name: "postgres", Ping: db.PingContext},
		close:    func(context.Context) error { return db.Close() },
	}
}

func mongoStores(client *mongo.Client, db *mongo.Database) *stores {
	return &stores{
		users:    mongostore.NewUserStore(db),
		patients: mongostore.NewPatientStore(db),
		samples:  mongostore.NewSampleStore(db),
		images:   mongostore.NewImageStore(db),
		check: handler.ReadinessCheck{Name: "mongo", Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}},
		close: client.Disconnect,
	}
}
