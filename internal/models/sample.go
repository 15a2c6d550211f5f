package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// LabStatus is the review state of a sample collection.
type LabStatus string

const (
	LabStatusPending  LabStatus = "pending"
	LabStatusApproved LabStatus = "approved"
	LabStatusRejected LabStatus = "rejected"
)

// IsReviewOutcome reports whether s is a state a reviewer may move a sample to.
func (s LabStatus) IsReviewOutcome() bool {
	return s == LabStatusApproved || s == LabStatusRejected
}

// SampleType categorises the collected specimen.
type SampleType string

const (
	SampleTypeStool SampleType = "stool"
	SampleTypeBlood SampleType = "blood"
	SampleTypeUrine SampleType = "urine"
	SampleTypeOther SampleType = "other"
)

// Valid reports whether t is a known sample type.
func (t SampleType) Valid() bool {
	switch t {
	case SampleTypeStool, SampleTypeBlood, SampleTypeUrine, SampleTypeOther:
		return true
	}
	return false
}

// SampleImage references an uploaded image from a sample collection.
type SampleImage struct {
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
	ImageID     string `bson:"imageId" json:"imageId"`
	URL         string `bson:"-" json:"url,omitempty"`
}

// SampleImages is the ordered image list, persisted as JSONB by the SQL driver.
type SampleImages []SampleImage

// Value marshals the images to JSON for persistence.
func (s SampleImages) Value() (driver.Value, error) {
	if s == nil {
		s = SampleImages{}
	}
	data, err := json.Marshal([]SampleImage(s))
	if err != nil {
		return nil, fmt.Errorf("marshal sample images: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON column into the image list.
func (s *SampleImages) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = SampleImages{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SampleImages", value)
	}
	if len(data) == 0 {
		*s = SampleImages{}
		return nil
	}
	if err := json.Unmarshal(data, (*[]SampleImage)(s)); err != nil {
		return fmt.Errorf("unmarshal sample images: %w", err)
	}
	return nil
}

// SampleCollection is one specimen intake tracked through lab review.
type SampleCollection struct {
	ID             string       `bson:"_id" db:"id" json:"id"`
	PatientID      string       `bson:"patientId" db:"patient_id" json:"patientId"`
	PatientName    *string      `bson:"patientName,omitempty" db:"patient_name" json:"patientName,omitempty"`
	SampleType     SampleType   `bson:"sampleType" db:"sample_type" json:"sampleType"`
	Notes          *string      `bson:"notes,omitempty" db:"notes" json:"notes,omitempty"`
	Images         SampleImages `bson:"images" db:"images" json:"images"`
	CollectedBy    string       `bson:"collectedBy" db:"collected_by" json:"collectedBy"`
	CollectionDate time.Time    `bson:"collectionDate" db:"collection_date" json:"collectionDate"`
	LabStatus      LabStatus    `bson:"labStatus" db:"lab_status" json:"labStatus"`
	LabComments    string       `bson:"labComments" db:"lab_comments" json:"labComments"`
	ReviewedBy     *string      `bson:"reviewedBy,omitempty" db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time   `bson:"reviewedAt,omitempty" db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt      time.Time    `bson:"createdAt" db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" db:"updated_at" json:"updatedAt"`
}

// SampleReview is the single-record update written by a lab review.
type SampleReview struct {
	LabStatus   LabStatus
	LabComments string
	ReviewedBy  string
	ReviewedAt  time.Time
}

// SampleFilter narrows sample listings.
type SampleFilter struct {
	LabStatus *LabStatus
	PatientID string
	Limit     int
	Offset    int
}

// ImageRecord is the metadata of a stored image blob.
type ImageRecord struct {
	ID          string    `bson:"_id" db:"id" json:"id"`
	Filename    string    `bson:"filename" db:"filename" json:"filename"`
	ContentType string    `bson:"contentType" db:"content_type" json:"contentType"`
	Size        int64     `bson:"size" db:"size" json:"size"`
	Path        string    `bson:"path" db:"path" json:"-"`
	UploadedBy  string    `bson:"uploadedBy" db:"uploaded_by" json:"uploadedBy"`
	UploadedAt  time.Time `bson:"uploadedAt" db:"uploaded_at" json:"uploadedAt"`
}

// PatientResult is the outcome-only view of a sample shown to its patient.
type PatientResult struct {
	ID             string     `json:"id"`
	SampleType     SampleType `json:"sampleType"`
	CollectionDate time.Time  `json:"collectionDate"`
	LabStatus      LabStatus  `json:"labStatus"`
	LabComments    string     `json:"labComments"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
}

// NewPatientResult strips everything but the lab outcome from a sample.
func NewPatientResult(s SampleCollection) PatientResult {
	return PatientResult{
		ID:             s.ID,
		SampleType:     s.SampleType,
		CollectionDate: s.CollectionDate,
		LabStatus:      s.LabStatus,
		LabComments:    s.LabComments,
		ReviewedAt:     s.ReviewedAt,
	}
}

// PatientResults bundles the results with the matched identity.
type PatientResults struct {
	Results     []PatientResult `json:"results"`
	PatientInfo PatientInfo     `json:"patientInfo"`
}
