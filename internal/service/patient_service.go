package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/dto"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

const patientSearchLimit = 10

type patientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context) ([]models.Patient, error)
	Search(ctx context.Context, term string, limit int) ([]models.Patient, error)
	Delete(ctx context.Context, id string) error
}

type patientAccountCreator interface {
	Create(ctx context.Context, user *models.User) error
}

// PatientService registers patients and provisions their login accounts.
type PatientService struct {
	patients  patientRepository
	accounts  patientAccountCreator
	validator *validator.Validate
	logger    *zap.Logger
	otpLength int

	newUsername func(firstName, lastName string) (string, error)
	newOTP      func(length int) (string, error)
}

// NewPatientService constructs a PatientService.
func NewPatientService(patients patientRepository, accounts patientAccountCreator, validate *validator.Validate, logger *zap.Logger, otpLength int) *PatientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if otpLength <= 0 {
		otpLength = defaultOTPLength
	}
	return &PatientService{
		patients:    patients,
		accounts:    accounts,
		validator:   validate,
		logger:      logger,
		otpLength:   otpLength,
		newUsername: generatePatientUsername,
		newOTP:      generateOTP,
	}
}

// CreatePatient stores the patient and provisions an approved patient account.
// The plaintext one-time password only ever appears in the returned value.
func (s *PatientService) CreatePatient(ctx context.Context, req dto.CreatePatientRequest, actor *models.JWTClaims) (*models.Patient, *models.ProvisionedAccount, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "firstName and lastName are required")
	}

	username, err := s.newUsername(req.FirstName, req.LastName)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to generate username")
	}
	otp, err := s.newOTP(s.otpLength)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to generate one-time password")
	}
	passwordHash, err := hashPassword(otp)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to hash one-time password")
	}

	userID := uuid.NewString()
	patient := newPatient(req)
	patient.ID = uuid.NewString()
	patient.UserID = &userID
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, nil, appErrors.Internal(err, "failed to create patient")
	}

	account := &models.User{
		ID:           userID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RolePatient,
		FirstName:    patient.FirstName,
		MiddleName:   patient.MiddleName,
		LastName:     patient.LastName,
		Suffix:       patient.Suffix,
		Email:        patient.Email,
		PatientID:    &patient.ID,
		IsApproved:   true,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if delErr := s.patients.Delete(ctx, patient.ID); delErr != nil {
			s.logger.Error("failed to roll back patient after account error", zap.String("patient_id", patient.ID), zap.Error(delErr))
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, appErrors.Clone(appErrors.ErrConflict, "generated username "+username+" is taken, submit again")
		}
		return nil, nil, appErrors.Internal(err, "failed to create patient account")
	}

	fields := []zap.Field{zap.String("patient_id", patient.ID), zap.String("username", username)}
	if actor != nil {
		fields = append(fields, zap.String("collected_by", actor.Username))
	}
	s.logger.Info("patient registered", fields...)

	return patient, &models.ProvisionedAccount{
		PatientID: patient.ID,
		UserID:    userID,
		Username:  username,
		OTP:       otp,
	}, nil
}

// List returns every patient, newest first.
func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list patients")
	}
	return patients, nil
}

// Search finds up to ten patients whose name parts contain term. A blank term
// yields an empty result without querying.
func (s *PatientService) Search(ctx context.Context, term string) ([]models.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Patient{}, nil
	}
	patients, err := s.patients.Search(ctx, term, patientSearchLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search patients")
	}
	return patients, nil
}

// Get returns a patient by id.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Internal(err, "failed to load patient")
	}
	return patient, nil
}

func newPatient(req dto.CreatePatientRequest) *models.Patient {
	return &models.Patient{
		FirstName:                req.FirstName,
		MiddleName:               nonEmpty(req.MiddleName),
		LastName:                 req.LastName,
		Suffix:                   nonEmpty(req.Suffix),
		DateOfBirth:              nonEmpty(req.DateOfBirth),
		Gender:                   req.Gender,
		Age:                      req.Age,
		CivilStatus:              nonEmpty(req.CivilStatus),
		PhoneNumber:              nonEmpty(req.PhoneNumber),
		AlternatePhone:           nonEmpty(req.AlternatePhone),
		Email:                    nonEmpty(req.Email),
		Address:                  nonEmpty(req.Address),
		Barangay:                 nonEmpty(req.Barangay),
		Municipality:             nonEmpty(req.Municipality),
		Province:                 nonEmpty(req.Province),
		EmergencyContactName:     nonEmpty(req.EmergencyContactName),
		EmergencyContactPhone:    nonEmpty(req.EmergencyContactPhone),
		EmergencyContactRelation: nonEmpty(req.EmergencyContactRelation),
		MedicalHistory:           nonEmpty(req.MedicalHistory),
		Allergies:                nonEmpty(req.Allergies),
		CurrentMedications:       nonEmpty(req.CurrentMedications),
		Symptoms:                 nonEmpty(req.Symptoms),
		ReferringPhysician:       nonEmpty(req.ReferringPhysician),
		Notes:                    nonEmpty(req.Notes),
	}
}
