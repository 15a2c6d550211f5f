package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/service"
	"github.com/noah-isme/fieldlab-api/pkg/response"
)

type resultService interface {
	PatientResults(ctx context.Context, actor *models.JWTClaims) (*models.PatientResults, error)
	Export(ctx context.Context, actor *models.JWTClaims, format string) (*service.ResultExport, error)
}

// ResultHandler serves lab outcomes to patients.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs a ResultHandler.
func NewResultHandler(svc resultService) *ResultHandler {
	return &ResultHandler{service: svc}
}

// Results godoc
// @Summary Own lab results
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /patient/results [get]
func (h *ResultHandler) Results(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	results, err := h.service.PatientResults(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Export godoc
// @Summary Download own lab results
// @Tags Patient
// @Produce application/pdf,text/csv
// @Security BearerAuth
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /patient/results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	out, err := h.service.Export(c.Request.Context(), claims, c.DefaultQuery("format", "pdf"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Data)
}
