package dto

import "github.com/noah-isme/fieldlab-api/internal/models"

// CreateSampleRequest holds the multipart form fields sent with sample images.
type CreateSampleRequest struct {
	PatientID   string            `form:"patientId" json:"patientId"`
	PatientName string            `form:"patientName" json:"patientName"`
	SampleType  models.SampleType `form:"sampleType" json:"sampleType"`
	Notes       string            `form:"notes" json:"notes"`
}

// ReviewSampleRequest is the lab review decision.
type ReviewSampleRequest struct {
	Status   models.LabStatus `json:"status"`
	Comments string           `json:"comments"`
}

// SampleListQuery captures listing query parameters.
type SampleListQuery struct {
	LabStatus string `form:"labStatus"`
	PatientID string `form:"patientId"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
