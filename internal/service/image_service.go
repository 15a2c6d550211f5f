package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
	"github.com/noah-isme/fieldlab-api/pkg/storage"
)

type imageStore interface {
	Create(ctx context.Context, image *models.ImageRecord) error
	FindByID(ctx context.Context, id string) (*models.ImageRecord, error)
	Delete(ctx context.Context, id string) error
}

type imageFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type imageURLSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string) (resourceID, relPath string, expiresAt time.Time, err error)
}

// ImageUpload is one uploaded image part.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ImageDownload bundles an open image file with its metadata.
type ImageDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	Size        int64
}

// ImageServiceConfig holds upload limits and link settings.
type ImageServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// ImageService stores sample images and serves them back by id or signed link.
type ImageService struct {
	repo    imageStore
	storage imageFileStorage
	signer  imageURLSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ImageServiceConfig
	mimeSet map[string]struct{}
	now     func() time.Time
}

// NewImageService constructs the service with defaults.
func NewImageService(repo imageStore, files imageFileStorage, signer imageURLSigner, metrics *MetricsService, logger *zap.Logger, cfg ImageServiceConfig) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return &ImageService{
		repo:    repo,
		storage: files,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		mimeSet: mimeSet,
		now:     time.Now,
	}
}

// Store validates and persists one image, returning the reference kept on the
// sample record.
func (s *ImageService) Store(ctx context.Context, upload ImageUpload, uploadedBy string) (*models.SampleImage, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is empty")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, appErrors.Internal(err, "failed to read image")
	}
	head = head[:n]
	contentType := s.contentType(upload.ContentType, head)
	if _, ok := s.mimeSet[contentType]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %s not allowed", contentType))
	}

	filename := strings.TrimSpace(upload.Filename)
	if filename == "" {
		filename = fmt.Sprintf("img-%d.jpg", s.now().UnixMilli())
	}

	id := uuid.NewString()
	// Copy at most one byte over the limit so a lying Size header is caught.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Content), s.cfg.MaxFileSize+1)
	path, written, err := s.storage.SaveStream(imagePath(id), body)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to persist image")
	}
	if written > s.cfg.MaxFileSize {
		_ = s.storage.Delete(path)
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	record := &models.ImageRecord{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		Path:        path,
		UploadedBy:  uploadedBy,
		UploadedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		_ = s.storage.Delete(path)
		return nil, appErrors.Internal(err, "failed to record image metadata")
	}
	s.metrics.RecordImageUpload()

	return &models.SampleImage{
		Filename:    record.Filename,
		ContentType: record.ContentType,
		Size:        record.Size,
		ImageID:     record.ID,
	}, nil
}

// Discard removes a stored image. It is used to roll back a failed intake and
// only logs failures.
func (s *ImageService) Discard(ctx context.Context, imageID string) {
	if err := s.repo.Delete(ctx, imageID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to delete image metadata", zap.String("image_id", imageID), zap.Error(err))
	}
	if err := s.storage.Delete(imagePath(imageID)); err != nil {
		s.logger.Warn("failed to delete image file", zap.String("image_id", imageID), zap.Error(err))
	}
}

// Open returns the image bytes and metadata.
func (s *ImageService) Open(ctx context.Context, imageID string) (*ImageDownload, error) {
	record, err := s.repo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
		}
		return nil, appErrors.Internal(err, "failed to load image")
	}
	file, err := s.storage.Open(record.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "image file missing")
		}
		return nil, appErrors.Internal(err, "failed to open image")
	}
	return &ImageDownload{File: file, Filename: record.Filename, ContentType: record.ContentType, Size: record.Size}, nil
}

// OpenSigned validates a signed link token for imageID and opens the image.
func (s *ImageService) OpenSigned(ctx context.Context, imageID, token string) (*ImageDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "signed links are disabled")
	}
	tokenID, _, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid link")
	}
	if tokenID != imageID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid link")
	}
	return s.Open(ctx, imageID)
}

// SignImages returns a copy of images with short-lived download links filled in.
func (s *ImageService) SignImages(images models.SampleImages) models.SampleImages {
	signed := make(models.SampleImages, len(images))
	copy(signed, images)
	if s.signer == nil {
		return signed
	}
	for i := range signed {
		token, _, err := s.signer.Generate(signed[i].ImageID, imagePath(signed[i].ImageID))
		if err != nil {
			s.logger.Warn("failed to sign image link", zap.String("image_id", signed[i].ImageID), zap.Error(err))
			continue
		}
		signed[i].URL = fmt.Sprintf("%s/files/%s?token=%s", s.cfg.APIPrefix, url.PathEscape(signed[i].ImageID), url.QueryEscape(token))
	}
	return signed
}

func (s *ImageService) contentType(declared string, head []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	sniffed := http.DetectContentType(head)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// imagePath shards image files by the first two characters of their id.
func imagePath(id string) string {
	shard := "00"
	if len(id) >= 2 {
		shard = id[:2]
	}
	return "samples/" + shard + "/" + id
}
