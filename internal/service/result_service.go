package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
	"github.com/noah-isme/fieldlab-api/pkg/export"
)

type resultUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type resultPatientLookup interface {
	FindByID(ctx context.Context, id string) (*models.Patient, error)
}

type resultSampleLister interface {
	ListByPatient(ctx context.Context, patientID string) ([]models.SampleCollection, error)
}

// Exporter renders a dataset into one file format.
type Exporter interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ResultExport is a rendered results document.
type ResultExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResultService exposes lab outcomes to the patient they belong to.
type ResultService struct {
	users     resultUserLookup
	patients  resultPatientLookup
	samples   resultSampleLister
	exporters map[string]Exporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewResultService constructs a ResultService. Exporters are keyed by format name.
func NewResultService(users resultUserLookup, patients resultPatientLookup, samples resultSampleLister, exporters map[string]Exporter, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporters == nil {
		exporters = map[string]Exporter{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		}
	}
	return &ResultService{users: users, patients: patients, samples: samples, exporters: exporters, logger: logger, now: time.Now}
}

// PatientResults returns the caller's own samples, newest collection first,
// reduced to their lab outcome. A patient account that cannot be matched to a
// patient record gets an empty list.
func (s *ResultService) PatientResults(ctx context.Context, actor *models.JWTClaims) (*models.PatientResults, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if actor.Role != models.RolePatient {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "results are only available to patients")
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}

	patient, err := s.matchPatient(ctx, user)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return &models.PatientResults{
			Results:     []models.PatientResult{},
			PatientInfo: models.PatientInfo{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email},
		}, nil
	}

	samples, err := s.samples.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load results")
	}
	results := make([]models.PatientResult, 0, len(samples))
	for _, sample := range samples {
		results = append(results, models.NewPatientResult(sample))
	}
	return &models.PatientResults{
		Results:     results,
		PatientInfo: models.PatientInfo{FirstName: patient.FirstName, LastName: patient.LastName, Email: patient.Email},
	}, nil
}

// Export renders the caller's results as pdf or csv.
func (s *ResultService) Export(ctx context.Context, actor *models.JWTClaims, format string) (*ResultExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "pdf"
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
	results, err := s.PatientResults(ctx, actor)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	dataset := export.Dataset{
		Title: "Lab Results",
		Meta: []string{
			"Patient: " + strings.TrimSpace(results.PatientInfo.FirstName+" "+results.PatientInfo.LastName),
			"Generated: " + generatedAt.Format(time.RFC3339),
		},
		Headers: []string{"Sample", "Type", "Collected", "Status", "Comments", "Reviewed"},
		Rows:    make([]map[string]string, 0, len(results.Results)),
	}
	for _, r := range results.Results {
		reviewed := ""
		if r.ReviewedAt != nil {
			reviewed = r.ReviewedAt.UTC().Format("2006-01-02 15:04")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Sample":    r.ID,
			"Type":      string(r.SampleType),
			"Collected": r.CollectionDate.UTC().Format("2006-01-02 15:04"),
			"Status":    string(r.LabStatus),
			"Comments":  r.LabComments,
			"Reviewed":  reviewed,
		})
	}

	data, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render results")
	}
	s.logger.Info("results exported", zap.String("user_id", actor.UserID), zap.String("format", format), zap.Int("rows", len(dataset.Rows)))
	return &ResultExport{
		Filename:    fmt.Sprintf("lab-results-%s.%s", generatedAt.Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

// matchPatient follows the account's patient link only. Self-registered
// accounts carry no link and see no results, since a name can be claimed by
// anyone.
func (s *ResultService) matchPatient(ctx context.Context, user *models.User) (*models.Patient, error) {
	if user.PatientID == nil || *user.PatientID == "" {
		return nil, nil
	}
	patient, err := s.patients.FindByID(ctx, *user.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to load patient")
	}
	return patient, nil
}
