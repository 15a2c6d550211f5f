package models

import "time"

// Gender values accepted on patient intake.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Patient is a person registered by a field collector.
type Patient struct {
	ID                       string    `bson:"_id" db:"id" json:"id"`
	FirstName                string    `bson:"firstName" db:"first_name" json:"firstName"`
	MiddleName               *string   `bson:"middleName" db:"middle_name" json:"middleName"`
	LastName                 string    `bson:"lastName" db:"last_name" json:"lastName"`
	Suffix                   *string   `bson:"suffix" db:"suffix" json:"suffix"`
	DateOfBirth              *string   `bson:"dateOfBirth" db:"date_of_birth" json:"dateOfBirth"`
	Gender                   *Gender   `bson:"gender" db:"gender" json:"gender"`
	Age                      *int      `bson:"age" db:"age" json:"age"`
	CivilStatus              *string   `bson:"civilStatus" db:"civil_status" json:"civilStatus"`
	PhoneNumber              *string   `bson:"phoneNumber" db:"phone_number" json:"phoneNumber"`
	AlternatePhone           *string   `bson:"alternatePhone" db:"alternate_phone" json:"alternatePhone"`
	Email                    *string   `bson:"email" db:"email" json:"email"`
	Address                  *string   `bson:"address" db:"address" json:"address"`
	Barangay                 *string   `bson:"barangay" db:"barangay" json:"barangay"`
	Municipality             *string   `bson:"municipality" db:"municipality" json:"municipality"`
	Province                 *string   `bson:"province" db:"province" json:"province"`
	EmergencyContactName     *string   `bson:"emergencyContactName" db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactPhone    *string   `bson:"emergencyContactPhone" db:"emergency_contact_phone" json:"emergencyContactPhone"`
	EmergencyContactRelation *string   `bson:"emergencyContactRelation" db:"emergency_contact_relation" json:"emergencyContactRelation"`
	MedicalHistory           *string   `bson:"medicalHistory" db:"medical_history" json:"medicalHistory"`
	Allergies                *string   `bson:"allergies" db:"allergies" json:"allergies"`
	CurrentMedications       *string   `bson:"currentMedications" db:"current_medications" json:"currentMedications"`
	Symptoms                 *string   `bson:"symptoms" db:"symptoms" json:"symptoms"`
	ReferringPhysician       *string   `bson:"referringPhysician" db:"referring_physician" json:"referringPhysician"`
	Notes                    *string   `bson:"notes" db:"notes" json:"notes"`
	UserID                   *string   `bson:"userId" db:"user_id" json:"userId,omitempty"`
	CreatedAt                time.Time `bson:"createdAt" db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time `bson:"updatedAt" db:"updated_at" json:"updatedAt"`
}

// DisplayName joins the patient's name parts.
func (p Patient) DisplayName() string {
	return JoinName(p.FirstName, p.MiddleName, p.LastName, p.Suffix)
}

// PatientInfo is the identity block shown next to patient results.
type PatientInfo struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
}

// ProvisionedAccount is returned once when a patient is created. OTP is never
// persisted in plaintext.
type ProvisionedAccount struct {
	PatientID string `json:"patientId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	OTP       string `json:"otp"`
}
