package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fieldlab-api/internal/models"
)

func TestCreatePatient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO patients (id, first_name")).WillReturnResult(sqlmock.NewResult(1, 1))

	patient := &models.Patient{FirstName: "Juan", LastName: "Dela Cruz"}
	require.NoError(t, repo.Create(context.Background(), patient))
	assert.NotEmpty(t, patient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPatientsEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM patients WHERE first_name ILIKE $1")).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	patients, err := repo.Search(context.Background(), "50%_off", 10)
	require.NoError(t, err)
	assert.Empty(t, patients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepositoryRoundTrip(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewImageRepository(db)

	mock.ExpectExec("INSERT INTO sample_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sample_images WHERE id = $1")).
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "content_type", "size", "path"}).AddRow("img-1", "a.jpg", "image/jpeg", 4, "samples/img-1.jpg"))

	image := &models.ImageRecord{ID: "img-1", Filename: "a.jpg", ContentType: "image/jpeg", Size: 4, Path: "samples/img-1.jpg"}
	require.NoError(t, repo.Create(context.Background(), image))
	found, err := repo.FindByID(context.Background(), "img-1")
	require.NoError(t, err)
	assert.Equal(t, "samples/img-1.jpg", found.Path)
	assert.NoError(t, mock.ExpectationsWereMet())
}
