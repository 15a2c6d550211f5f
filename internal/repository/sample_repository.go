package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fieldlab-api/internal/models"
)

const sampleColumns = `id, patient_id, patient_name, sample_type, notes, images, collected_by, collection_date, lab_status, lab_comments, reviewed_by, reviewed_at, created_at, updated_at`

// SampleRepository persists sample collections.
type SampleRepository struct {
	db *sqlx.DB
}

// NewSampleRepository constructs a SampleRepository.
func NewSampleRepository(db *sqlx.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Create inserts a sample collection.
func (r *SampleRepository) Create(ctx context.Context, sample *models.SampleCollection) error {
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
	sample.UpdatedAt = now

	const query = `INSERT INTO sample_collections (id, patient_id, patient_name, sample_type, notes, images, collected_by, collection_date, lab_status, lab_comments, created_at, updated_at) VALUES (:id, :patient_id, :patient_name, :sample_type, :notes, :images, :collected_by, :collection_date, :lab_status, :lab_comments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sample); err != nil {
		return fmt.Errorf("create sample collection: %w", translate(err))
	}
	return nil
}

// FindByID returns a sample collection by identifier.
func (r *SampleRepository) FindByID(ctx context.Context, id string) (*models.SampleCollection, error) {
	query := `SELECT ` + sampleColumns + ` FROM sample_collections WHERE id = $1 LIMIT 1`
	var sample models.SampleCollection
	if err := r.db.GetContext(ctx, &sample, query, id); err != nil {
		return nil, fmt.Errorf("find sample collection: %w", translate(err))
	}
	return &sample, nil
}

// List returns samples newest first together with the total count.
func (r *SampleRepository) List(ctx context.Context, filter models.SampleFilter) ([]models.SampleCollection, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.LabStatus != nil {
		args = append(args, *filter.LabStatus)
		conditions = append(conditions, fmt.Sprintf("lab_status = $%d", len(args)))
	}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	base := "FROM sample_collections WHERE " + strings.Join(conditions, " AND ")

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC", sampleColumns, base)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	samples := []models.SampleCollection{}
	if err := r.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sample collections: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count sample collections: %w", err)
	}
	return samples, total, nil
}

// ListByPatient returns a patient's samples, most recently collected first.
func (r *SampleRepository) ListByPatient(ctx context.Context, patientID string) ([]models.SampleCollection, error) {
	query := `SELECT ` + sampleColumns + ` FROM sample_collections WHERE patient_id = $1 ORDER BY collection_date DESC`
	samples := []models.SampleCollection{}
	if err := r.db.SelectContext(ctx, &samples, query, patientID); err != nil {
		return nil, fmt.Errorf("list patient samples: %w", err)
	}
	return samples, nil
}

// Review writes the review outcome in a single update. The last review wins.
func (r *SampleRepository) Review(ctx context.Context, id string, review models.SampleReview) error {
	const query = `UPDATE sample_collections SET lab_status = $2, lab_comments = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, review.LabStatus, review.LabComments, review.ReviewedBy, review.ReviewedAt)
	if err != nil {
		return fmt.Errorf("review sample collection: %w", err)
	}
	return requireAffected(res, "review sample collection")
}
