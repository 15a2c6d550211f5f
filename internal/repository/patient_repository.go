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

const patientColumns = `id, first_name, middle_name, last_name, suffix, date_of_birth, gender, age, civil_status, phone_number, alternate_phone, email, address, barangay, municipality, province, emergency_contact_name, emergency_contact_phone, emergency_contact_relation, medical_history, allergies, current_medications, symptoms, referring_physician, notes, user_id, created_at, updated_at`

// PatientRepository manages persistence for patient records.
type PatientRepository struct {
	db *sqlx.DB
}

// NewPatientRepository constructs a PatientRepository.
func NewPatientRepository(db *sqlx.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a new patient.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now

	cols := strings.Split(patientColumns, ", ")
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	query := fmt.Sprintf("INSERT INTO patients (%s) VALUES (%s)", patientColumns, strings.Join(named, ", "))
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("create patient: %w", translate(err))
	}
	return nil
}

// FindByID returns a patient by identifier.
func (r *PatientRepository) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 LIMIT 1`
	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("find patient by id: %w", translate(err))
	}
	return &patient, nil
}

// List returns every patient, newest first.
func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`
	patients := []models.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// Search matches term case-insensitively against the name parts. The term is
// matched literally.
func (r *PatientRepository) Search(ctx context.Context, term string, limit int) ([]models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE first_name ILIKE $1 ESCAPE '\' OR middle_name ILIKE $1 ESCAPE '\' OR last_name ILIKE $1 ESCAPE '\' ORDER BY created_at DESC LIMIT %d`, patientColumns, limit)
	patients := []models.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, "%"+escapeLike(term)+"%"); err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// Delete removes a patient record.
func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return requireAffected(res, "delete patient")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
