package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fieldlab-api/internal/dto"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/pkg/response"
)

type patientService interface {
	CreatePatient(ctx context.Context, req dto.CreatePatientRequest, actor *models.JWTClaims) (*models.Patient, *models.ProvisionedAccount, error)
	List(ctx context.Context) ([]models.Patient, error)
	Search(ctx context.Context, term string) ([]models.Patient, error)
	Get(ctx context.Context, id string) (*models.Patient, error)
}

// PatientHandler serves field intake of patients.
type PatientHandler struct {
	service patientService
}

// NewPatientHandler constructs a PatientHandler.
func NewPatientHandler(svc patientService) *PatientHandler {
	return &PatientHandler{service: svc}
}

// Create godoc
// @Summary Register patient
// @Description Stores the patient and provisions a patient login. The one-time password appears only in this response.
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePatientRequest true "Patient"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /field_collector/patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreatePatientRequest
	if !bindJSON(c, &req, "invalid patient payload") {
		return
	}
	patient, account, err := h.service.CreatePatient(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.CreatePatientResponse{Patient: *patient, Account: *account})
}

// List godoc
// @Summary List patients
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /field_collector/patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patients, nil)
}

// Search godoc
// @Summary Search patients by name
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name fragment"
// @Success 200 {object} response.Envelope
// @Router /field_collector/patients/search [get]
func (h *PatientHandler) Search(c *gin.Context) {
	var query dto.PatientSearchQuery
	_ = c.ShouldBindQuery(&query)
	patients, err := h.service.Search(c.Request.Context(), query.Q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patients, nil)
}

// Get godoc
// @Summary Get patient
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /field_collector/patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patient, nil)
}
