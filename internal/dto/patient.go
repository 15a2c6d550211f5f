package dto

import "github.com/noah-isme/fieldlab-api/internal/models"

// CreatePatientRequest is the field intake form for a new patient.
type CreatePatientRequest struct {
	FirstName                string         `json:"firstName" validate:"required,max=100"`
	MiddleName               *string        `json:"middleName"`
	LastName                 string         `json:"lastName" validate:"required,max=100"`
	Suffix                   *string        `json:"suffix"`
	DateOfBirth              *string        `json:"dateOfBirth"`
	Gender                   *models.Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	Age                      *int           `json:"age" validate:"omitempty,min=0,max=150"`
	CivilStatus              *string        `json:"civilStatus" validate:"omitempty,oneof=single married divorced widowed separated"`
	PhoneNumber              *string        `json:"phoneNumber"`
	AlternatePhone           *string        `json:"alternatePhone"`
	Email                    *string        `json:"email" validate:"omitempty,email"`
	Address                  *string        `json:"address"`
	Barangay                 *string        `json:"barangay"`
	Municipality             *string        `json:"municipality"`
	Province                 *string        `json:"province"`
	EmergencyContactName     *string        `json:"emergencyContactName"`
	EmergencyContactPhone    *string        `json:"emergencyContactPhone"`
	EmergencyContactRelation *string        `json:"emergencyContactRelation"`
	MedicalHistory           *string        `json:"medicalHistory"`
	Allergies                *string        `json:"allergies"`
	CurrentMedications       *string        `json:"currentMedications"`
	Symptoms                 *string        `json:"symptoms"`
	ReferringPhysician       *string        `json:"referringPhysician"`
	Notes                    *string        `json:"notes"`
}

// CreatePatientResponse carries the new patient and the one-time credentials of
// the provisioned account.
type CreatePatientResponse struct {
	Patient models.Patient            `json:"patient"`
	Account models.ProvisionedAccount `json:"account"`
}
