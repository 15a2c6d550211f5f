package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/dto"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

type sampleRepository interface {
	Create(ctx context.Context, sample *models.SampleCollection) error
	FindByID(ctx context.Context, id string) (*models.SampleCollection, error)
	List(ctx context.Context, filter models.SampleFilter) ([]models.SampleCollection, int, error)
	Review(ctx context.Context, id string, review models.SampleReview) error
}

type samplePatientLookup interface {
	FindByID(ctx context.Context, id string) (*models.Patient, error)
}

type sampleImageStore interface {
	Store(ctx context.Context, upload ImageUpload, uploadedBy string) (*models.SampleImage, error)
	Discard(ctx context.Context, imageID string)
	SignImages(images models.SampleImages) models.SampleImages
}

// SampleServiceConfig holds intake limits and cache settings.
type SampleServiceConfig struct {
	MaxImages int
	ListTTL   time.Duration
}

type sampleList struct {
	Items []models.SampleCollection `json:"items"`
	Total int                       `json:"total"`
}

// SampleService runs sample intake and the lab review workflow.
type SampleService struct {
	repo     sampleRepository
	patients samplePatientLookup
	images   sampleImageStore
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      SampleServiceConfig
	now      func() time.Time
}

// NewSampleService constructs a SampleService.
func NewSampleService(repo sampleRepository, patients samplePatientLookup, images sampleImageStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg SampleServiceConfig) *SampleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	return &SampleService{
		repo:     repo,
		patients: patients,
		images:   images,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateSample stores the images and a pending sample record for an existing
// patient. Stored images are removed again when the record cannot be written.
func (s *SampleService) CreateSample(ctx context.Context, req dto.CreateSampleRequest, uploads []ImageUpload, actor *models.JWTClaims) (*models.SampleCollection, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patientId is required")
	}
	if len(uploads) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one image is required")
	}
	if len(uploads) > s.cfg.MaxImages {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d images per sample", s.cfg.MaxImages))
	}
	sampleType := req.SampleType
	if sampleType == "" {
		sampleType = models.SampleTypeStool
	}
	if !sampleType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sampleType must be one of stool, blood, urine, other")
	}

	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Internal(err, "failed to load patient")
	}
	patientName := strings.TrimSpace(req.PatientName)
	if patientName == "" {
		patientName = patient.DisplayName()
	}

	stored := make(models.SampleImages, 0, len(uploads))
	rollback := func() {
		for _, img := range stored {
			s.images.Discard(ctx, img.ImageID)
		}
	}
	for _, upload := range uploads {
		img, err := s.images.Store(ctx, upload, actor.Username)
		if err != nil {
			rollback()
			return nil, err
		}
		stored = append(stored, *img)
	}

	sample := &models.SampleCollection{
		PatientID:      patient.ID,
		PatientName:    &patientName,
		SampleType:     sampleType,
		Notes:          nonEmpty(&req.Notes),
		Images:         stored,
		CollectedBy:    actor.Username,
		CollectionDate: s.now().UTC(),
		LabStatus:      models.LabStatusPending,
	}
	if err := s.repo.Create(ctx, sample); err != nil {
		rollback()
		return nil, appErrors.Internal(err, "failed to create sample collection")
	}

	s.cache.Invalidate(ctx, sampleListKeyPrefix+"*")
	s.logger.Info("sample collected",
		zap.String("sample_id", sample.ID),
		zap.String("patient_id", sample.PatientID),
		zap.Int("images", len(sample.Images)),
	)
	sample.Images = s.images.SignImages(sample.Images)
	return sample, nil
}

// ListSamples returns samples newest first. Pages are cached without links;
// links are signed per response.
func (s *SampleService) ListSamples(ctx context.Context, query dto.SampleListQuery) ([]models.SampleCollection, *models.Pagination, error) {
	filter := models.SampleFilter{PatientID: strings.TrimSpace(query.PatientID)}
	if query.LabStatus != "" {
		status := models.LabStatus(strings.ToLower(query.LabStatus))
		if status != models.LabStatusPending && !status.IsReviewOutcome() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "labStatus must be one of pending, approved, rejected")
		}
		filter.LabStatus = &status
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	key := sampleListKey(filter)
	var cached sampleList
	if !s.cache.Get(ctx, key, &cached) {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Internal(err, "failed to list samples")
		}
		cached = sampleList{Items: items, Total: total}
		s.cache.Set(ctx, key, cached, s.cfg.ListTTL)
	}

	for i := range cached.Items {
		cached.Items[i].Images = s.images.SignImages(cached.Items[i].Images)
	}
	return cached.Items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: cached.Total}, nil
}

// GetSample returns one sample with signed image links.
func (s *SampleService) GetSample(ctx context.Context, id string) (*models.SampleCollection, error) {
	sample, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sample not found")
		}
		return nil, appErrors.Internal(err, "failed to load sample")
	}
	sample.Images = s.images.SignImages(sample.Images)
	return sample, nil
}

// ReviewSample moves a sample to approved or rejected. Rejection needs a
// non-blank comment; comments are stored trimmed. Input is validated before
// the store is touched so a refused review leaves the record as it was.
func (s *SampleService) ReviewSample(ctx context.Context, sampleID string, outcome models.LabStatus, comments, reviewer string) (*models.SampleCollection, error) {
	if !outcome.IsReviewOutcome() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}
	comments = strings.TrimSpace(comments)
	if outcome == models.LabStatusRejected && comments == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comments are required for rejection")
	}
	if strings.TrimSpace(reviewer) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "reviewer identity required")
	}

	review := models.SampleReview{
		LabStatus:   outcome,
		LabComments: comments,
		ReviewedBy:  reviewer,
		ReviewedAt:  s.now().UTC(),
	}
	if err := s.repo.Review(ctx, sampleID, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sample not found")
		}
		return nil, appErrors.Internal(err, "failed to review sample")
	}

	s.cache.Invalidate(ctx, sampleListKeyPrefix+"*")
	s.metrics.RecordReview(string(outcome))
	s.logger.Info("sample reviewed",
		zap.String("sample_id", sampleID),
		zap.String("status", string(outcome)),
		zap.String("reviewed_by", reviewer),
	)
	return s.GetSample(ctx, sampleID)
}
